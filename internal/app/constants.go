package app

// MinPlayersToStartMatch defines the minimum roster size for a match.
// Solo practice legs are allowed.
const MinPlayersToStartMatch = 1

// MaxPlayersPerMatch caps the roster of a single scoring session.
const MaxPlayersPerMatch = 8

package exposure

// Triangular is exported for testing
var Triangular = triangular

// NearestRank is exported for testing
var NearestRank = nearestRank

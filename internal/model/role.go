package model

// Role is the closed set of principal roles. Authorization is a membership
// test against this enumeration, never a per-user permission list.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleViewer Role = "VIEWER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleViewer:
		return true
	}
	return false
}

// Distance names the metric a collection is created with and searched by.
type Distance string

const (
	DistanceCosine    Distance = "Cosine"
	DistanceDot       Distance = "Dot"
	DistanceEuclid    Distance = "Euclid"
	DistanceManhattan Distance = "Manhattan"
)

func (d Distance) Valid() bool {
	switch d {
	case DistanceCosine, DistanceDot, DistanceEuclid, DistanceManhattan:
		return true
	}
	return false
}

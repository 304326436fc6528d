package topo

// Field masks select which columns of a primitive a back-end call should
// read or write (§4.2). The core never requests more than it needs —
// this is a contract with the back end, not an optimization.

// NodeField is a bitmask over Node columns.
type NodeField uint8

const (
	NodeFieldID NodeField = 1 << iota
	NodeFieldContainingFace
	NodeFieldGeom

	NodeFieldAll = NodeFieldID | NodeFieldContainingFace | NodeFieldGeom
)

// EdgeField is a bitmask over Edge columns.
type EdgeField uint16

const (
	EdgeFieldID EdgeField = 1 << iota
	EdgeFieldStartNode
	EdgeFieldEndNode
	EdgeFieldFaceLeft
	EdgeFieldFaceRight
	EdgeFieldNextLeft
	EdgeFieldNextRight
	EdgeFieldGeom

	EdgeFieldAll = EdgeFieldID | EdgeFieldStartNode | EdgeFieldEndNode |
		EdgeFieldFaceLeft | EdgeFieldFaceRight | EdgeFieldNextLeft |
		EdgeFieldNextRight | EdgeFieldGeom
)

// FaceField is a bitmask over Face columns.
type FaceField uint8

const (
	FaceFieldID FaceField = 1 << iota
	FaceFieldMBR

	FaceFieldAll = FaceFieldID | FaceFieldMBR
)

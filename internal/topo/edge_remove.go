package topo

import "github.com/sirupsen/logrus"

// updateEdgeFaceRef rewrites every edge still referencing face of onto
// nf, on whichever side it was bound (§4.3.9's face-heal step).
func updateEdgeFaceRef(be Backend, of, nf ElemID) error {
	if _, err := be.UpdateEdges(Edge{FaceLeft: of}, EdgeFieldFaceLeft, Edge{FaceLeft: nf}, EdgeFieldFaceLeft, Edge{}, 0); err != nil {
		return err
	}
	if _, err := be.UpdateEdges(Edge{FaceRight: of}, EdgeFieldFaceRight, Edge{FaceRight: nf}, EdgeFieldFaceRight, Edge{}, 0); err != nil {
		return err
	}
	return nil
}

// updateNodeFaceRef rewrites every isolated node still contained in
// face of onto nf.
func updateNodeFaceRef(be Backend, of, nf ElemID) error {
	_, err := be.UpdateNodes(Node{ContainingFace: of}, NodeFieldContainingFace, Node{ContainingFace: nf}, NodeFieldContainingFace, Node{}, 0)
	return err
}

// RemIsoEdge deletes an isolated edge — one whose two sides bind the
// same face and whose nodes have no other incident edge — restoring
// both of its nodes to that face (§4.3.8).
func (t *Topology) RemIsoEdge(edgeID ElemID) error {
	const op = "RemIsoEdge"
	if ierr := checkInterrupt(op); ierr != nil {
		return ierr
	}

	rows, err := t.be.GetEdgeByID([]ElemID{edgeID}, EdgeFieldStartNode|EdgeFieldEndNode|EdgeFieldFaceLeft|EdgeFieldFaceRight)
	if err != nil {
		return wrapBackend(op, err)
	}
	if len(rows) == 0 {
		return newErr(op, KindNonExistentEdge, "edge %d does not exist", edgeID)
	}
	edge := rows[0]
	if edge.FaceLeft != edge.FaceRight {
		return newErr(op, KindNotIsolated, "edge %d is not isolated", edgeID)
	}
	containingFace := edge.FaceLeft

	incident, err := t.be.GetEdgeByNode([]ElemID{edge.StartNode, edge.EndNode}, EdgeFieldID)
	if err != nil {
		return wrapBackend(op, err)
	}
	for _, e := range incident {
		if e.ID == edgeID {
			continue
		}
		return newErr(op, KindNotIsolated, "edge %d is not isolated", edgeID)
	}

	if _, err := t.be.DeleteEdges(Edge{ID: edgeID}, EdgeFieldID); err != nil {
		return wrapBackend(op, err)
	}

	updates := []Node{{ID: edge.StartNode, ContainingFace: containingFace}}
	if edge.EndNode != edge.StartNode {
		updates = append(updates, Node{ID: edge.EndNode, ContainingFace: containingFace})
	}
	if err := t.be.UpdateNodesByID(updates, NodeFieldContainingFace); err != nil {
		return wrapBackend(op, err)
	}

	t.log.WithField("edge", edgeID).Debug("RemIsoEdge")
	return nil
}

// remEdge is the shared body of RemEdgeModFace and RemEdgeNewFace
// (§4.3.9): it fixes up the next_left/next_right linkage of every other
// edge that pointed through the edge being removed, floods whichever
// face(s) bounded it into one, and drops the edge (and, on a real
// two-face heal, its leftover face row). modFace selects whether the
// flood reuses the right face's row (matching AddEdgeModFace's
// asymmetry) or inserts a brand new one.
func remEdge(t *Topology, op string, edgeID ElemID, modFace bool) (ElemID, *Error) {
	rows, err := t.be.GetEdgeByID([]ElemID{edgeID}, EdgeFieldAll)
	if err != nil {
		return Unset, wrapBackend(op, err)
	}
	if len(rows) == 0 {
		return Unset, newErr(op, KindNonExistentEdge, "edge %d does not exist", edgeID)
	}
	edge := rows[0]

	if verr := t.be.CheckTopoGeomRemEdge(edgeID); verr != nil {
		return Unset, wrapBackend(op, verr)
	}

	nodeIDs := []ElemID{edge.StartNode}
	if edge.EndNode != edge.StartNode {
		nodeIDs = append(nodeIDs, edge.EndNode)
	}
	incident, err := t.be.GetEdgeByNode(nodeIDs, EdgeFieldID|EdgeFieldStartNode|EdgeFieldEndNode|EdgeFieldNextLeft|EdgeFieldNextRight)
	if err != nil {
		return Unset, wrapBackend(op, err)
	}

	var fnodeEdges, lnodeEdges int
	var updLeft, updRight []Edge
	for _, e := range incident {
		if e.ID == edgeID {
			continue
		}
		if e.StartNode == edge.StartNode || e.EndNode == edge.StartNode {
			fnodeEdges++
		}
		if e.StartNode == edge.EndNode || e.EndNode == edge.EndNode {
			lnodeEdges++
		}
		switch e.NextLeft {
		case -edgeID:
			nl := edge.NextLeft
			if nl == edgeID {
				nl = edge.NextRight
			}
			updLeft = append(updLeft, Edge{ID: e.ID, NextLeft: nl})
		case edgeID:
			nl := edge.NextRight
			if nl == -edgeID {
				nl = edge.NextLeft
			}
			updLeft = append(updLeft, Edge{ID: e.ID, NextLeft: nl})
		}
		switch e.NextRight {
		case -edgeID:
			nr := edge.NextLeft
			if nr == edgeID {
				nr = edge.NextRight
			}
			updRight = append(updRight, Edge{ID: e.ID, NextRight: nr})
		case edgeID:
			nr := edge.NextRight
			if nr == -edgeID {
				nr = edge.NextLeft
			}
			updRight = append(updRight, Edge{ID: e.ID, NextRight: nr})
		}
	}
	if len(updLeft) > 0 {
		if err := t.be.UpdateEdgesByID(updLeft, EdgeFieldNextLeft); err != nil {
			return Unset, wrapBackend(op, err)
		}
	}
	if len(updRight) > 0 {
		if err := t.be.UpdateEdgesByID(updRight, EdgeFieldNextRight); err != nil {
			return Unset, wrapBackend(op, err)
		}
	}

	floodface := edge.FaceRight
	var newFace ElemID // stays Universe's numeric twin (0) unless a real new face row is inserted

	if edge.FaceLeft != edge.FaceRight {
		if edge.FaceLeft == Universe || edge.FaceRight == Universe {
			floodface = Universe
		} else {
			faces, err := t.be.GetFaceByID([]ElemID{edge.FaceLeft, edge.FaceRight}, FaceFieldAll)
			if err != nil {
				return Unset, wrapBackend(op, err)
			}
			var box1, box2 *Bounds
			for i := range faces {
				switch faces[i].ID {
				case edge.FaceLeft:
					if box1 != nil {
						return Unset, newErr(op, KindCorruptedTopology, "more than one face has id %d", edge.FaceLeft)
					}
					b := faces[i].MBR
					box1 = &b
				case edge.FaceRight:
					if box2 != nil {
						return Unset, newErr(op, KindCorruptedTopology, "more than one face has id %d", edge.FaceRight)
					}
					b := faces[i].MBR
					box2 = &b
				default:
					return Unset, newErr(op, KindCorruptedTopology, "unexpected face %d returned removing edge %d", faces[i].ID, edgeID)
				}
			}
			if box1 == nil {
				return Unset, newErr(op, KindCorruptedTopology, "face %d not found (left face of edge %d)", edge.FaceLeft, edgeID)
			}
			if box2 == nil {
				return Unset, newErr(op, KindCorruptedTopology, "face %d not found (right face of edge %d)", edge.FaceRight, edgeID)
			}
			mergedMBR := box1.Union(*box2)

			if modFace {
				if err := t.be.UpdateFacesByID([]Face{{ID: floodface, MBR: mergedMBR}}, FaceFieldMBR); err != nil {
					return Unset, wrapBackend(op, err)
				}
			} else {
				newIDs, err := t.be.InsertFaces([]Face{{MBR: mergedMBR}})
				if err != nil {
					return Unset, wrapBackend(op, err)
				}
				floodface = newIDs[0]
				newFace = floodface
			}
		}

		if edge.FaceLeft != floodface {
			if err := updateEdgeFaceRef(t.be, edge.FaceLeft, floodface); err != nil {
				return Unset, wrapBackend(op, err)
			}
			if err := updateNodeFaceRef(t.be, edge.FaceLeft, floodface); err != nil {
				return Unset, wrapBackend(op, err)
			}
		}
		if edge.FaceRight != floodface {
			if err := updateEdgeFaceRef(t.be, edge.FaceRight, floodface); err != nil {
				return Unset, wrapBackend(op, err)
			}
			if err := updateNodeFaceRef(t.be, edge.FaceRight, floodface); err != nil {
				return Unset, wrapBackend(op, err)
			}
		}

		if err := t.be.UpdateTopoGeomFaceHeal(edge.FaceRight, edge.FaceLeft, floodface); err != nil {
			return Unset, wrapBackend(op, err)
		}
	}

	if _, err := t.be.DeleteEdges(Edge{ID: edgeID}, EdgeFieldID); err != nil {
		return Unset, wrapBackend(op, err)
	}

	var isoUpdates []Node
	if fnodeEdges == 0 {
		isoUpdates = append(isoUpdates, Node{ID: edge.StartNode, ContainingFace: floodface})
	}
	if edge.EndNode != edge.StartNode && lnodeEdges == 0 {
		isoUpdates = append(isoUpdates, Node{ID: edge.EndNode, ContainingFace: floodface})
	}
	if len(isoUpdates) > 0 {
		if err := t.be.UpdateNodesByID(isoUpdates, NodeFieldContainingFace); err != nil {
			return Unset, wrapBackend(op, err)
		}
	}

	if edge.FaceLeft != edge.FaceRight {
		var doomed []ElemID
		if edge.FaceRight != floodface {
			doomed = append(doomed, edge.FaceRight)
		}
		if edge.FaceLeft != floodface {
			doomed = append(doomed, edge.FaceLeft)
		}
		if len(doomed) > 0 {
			if err := t.be.DeleteFacesByID(doomed); err != nil {
				return Unset, wrapBackend(op, err)
			}
		}
	}

	if modFace {
		return floodface, nil
	}
	return newFace, nil
}

// RemEdgeModFace removes edge, flooding the face(s) it bounded into the
// right-hand face's row — kept, not replaced, to stay symmetric with
// AddEdgeModFace — and returns that face's id (§4.3.9).
func (t *Topology) RemEdgeModFace(edgeID ElemID) (ElemID, error) {
	const op = "RemEdgeModFace"
	if ierr := checkInterrupt(op); ierr != nil {
		return Unset, ierr
	}
	face, err := remEdge(t, op, edgeID, true)
	if err != nil {
		return Unset, err
	}
	t.log.WithFields(logrus.Fields{"edge": edgeID, "face": face}).Debug("RemEdgeModFace")
	return face, nil
}

// RemEdgeNewFace removes edge; if it bounded two distinct real faces, a
// brand new face row spanning both is inserted and both old rows are
// dropped (§4.3.9). Returns the new face id, or 0 when no new face row
// was needed — the edge was dangling, or one side was the universe.
func (t *Topology) RemEdgeNewFace(edgeID ElemID) (ElemID, error) {
	const op = "RemEdgeNewFace"
	if ierr := checkInterrupt(op); ierr != nil {
		return Unset, ierr
	}
	face, err := remEdge(t, op, edgeID, false)
	if err != nil {
		return Unset, err
	}
	t.log.WithFields(logrus.Fields{"edge": edgeID, "face": face}).Debug("RemEdgeNewFace")
	return face, nil
}

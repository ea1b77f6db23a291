package osm

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/qedus/osmpbf"
)

// PBFSource is the Source implementation backed by a standard OSM PBF file
// (§6's "we consume it through a streaming reader"). Matching is done in
// up to three linear passes over the file (§5: "OSM scanning is
// single-threaded"): the first collects every node and the tagged
// relations/ways matching the predicate; resolveDeps then makes one pass
// for member ways not yet collected and one for referenced nodes not yet
// collected, each only when something is missing.
type PBFSource struct {
	path string
}

// NewPBFSource returns a Source reading path, decoded on demand by
// GetObjsAndDeps/GetObjsAndDepsStore. The file is opened fresh for each
// call so the two are independently restartable.
func NewPBFSource(path string) *PBFSource {
	return &PBFSource{path: path}
}

func (s *PBFSource) openDecoder() (*os.File, *osmpbf.Decoder, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("osm: open %s: %w", s.path, err)
	}
	d := osmpbf.NewDecoder(f)
	d.SetBufferSize(osmpbf.MaxBlobSize)
	if err := d.Start(runtime.GOMAXPROCS(-1)); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("osm: start decoder: %w", err)
	}
	return f, d, nil
}

func (s *PBFSource) GetObjsAndDeps(pred Predicate) (Objects, error) {
	objs := NewObjects()
	if err := s.scan(pred, func(n Node) { objs.Nodes[n.ID] = n }, func(w Way) { objs.Ways[w.ID] = w }, func(r Relation) { objs.Relations[r.ID] = r }); err != nil {
		return Objects{}, err
	}
	if err := s.resolveDeps(&objs); err != nil {
		return Objects{}, err
	}
	return objs, nil
}

func (s *PBFSource) GetObjsAndDepsStore(pred Predicate, store ObjStore) (map[int64]Relation, error) {
	matched := NewObjects()
	if err := s.scan(pred, func(n Node) { matched.Nodes[n.ID] = n }, func(w Way) { matched.Ways[w.ID] = w }, func(r Relation) { matched.Relations[r.ID] = r }); err != nil {
		return nil, err
	}
	if err := s.resolveDeps(&matched); err != nil {
		return nil, err
	}
	for _, n := range matched.Nodes {
		if err := store.PutNode(n); err != nil {
			return nil, err
		}
	}
	for _, w := range matched.Ways {
		if err := store.PutWay(w); err != nil {
			return nil, err
		}
	}
	return matched.Relations, nil
}

// scan runs a single decode pass, invoking the matching callback for every
// relation/way satisfying pred and recording every node unconditionally
// (nodes have no tags predicate; they are needed as potential dependencies).
func (s *PBFSource) scan(pred Predicate, onNode func(Node), onWay func(Way), onRelation func(Relation)) error {
	f, d, err := s.openDecoder()
	if err != nil {
		return err
	}
	defer f.Close()

	for {
		obj, err := d.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("osm: decode: %w", err)
		}

		switch v := obj.(type) {
		case *osmpbf.Node:
			onNode(Node{ID: v.ID, Lon: v.Lon, Lat: v.Lat, Tags: v.Tags})
		case *osmpbf.Way:
			if pred.Way == nil || pred.Way(v.Tags) {
				onWay(Way{ID: v.ID, NodeIDs: v.NodeIDs, Tags: v.Tags})
			}
		case *osmpbf.Relation:
			if pred.Relation != nil && pred.Relation(v.Tags) {
				onRelation(Relation{ID: v.ID, Members: convertMembers(v.Members), Tags: v.Tags})
			}
		}
	}
	return nil
}

// resolveDeps runs a second pass collecting the ways and nodes transitively
// referenced by objs.Relations and objs.Ways that were not already
// captured in the first pass (§5's "transitively referenced ways and
// nodes").
func (s *PBFSource) resolveDeps(objs *Objects) error {
	wantWay := make(map[int64]bool)
	for _, rel := range objs.Relations {
		for _, m := range rel.Members {
			if m.Type == MemberWay {
				if _, have := objs.Ways[m.Ref]; !have {
					wantWay[m.Ref] = true
				}
			}
		}
	}

	if len(wantWay) > 0 {
		f, d, err := s.openDecoder()
		if err != nil {
			return err
		}
		for {
			obj, err := d.Decode()
			if err == io.EOF {
				break
			}
			if err != nil {
				f.Close()
				return fmt.Errorf("osm: decode (way deps): %w", err)
			}
			if w, ok := obj.(*osmpbf.Way); ok && wantWay[w.ID] {
				objs.Ways[w.ID] = Way{ID: w.ID, NodeIDs: w.NodeIDs, Tags: w.Tags}
			}
		}
		f.Close()
	}

	wantNode := make(map[int64]bool)
	for _, w := range objs.Ways {
		for _, nodeID := range w.NodeIDs {
			if _, have := objs.Nodes[nodeID]; !have {
				wantNode[nodeID] = true
			}
		}
	}
	for _, rel := range objs.Relations {
		for _, m := range rel.Members {
			if m.Type == MemberNode {
				if _, have := objs.Nodes[m.Ref]; !have {
					wantNode[m.Ref] = true
				}
			}
		}
	}

	if len(wantNode) > 0 {
		f, d, err := s.openDecoder()
		if err != nil {
			return err
		}
		defer f.Close()
		for {
			obj, err := d.Decode()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("osm: decode (node deps): %w", err)
			}
			if n, ok := obj.(*osmpbf.Node); ok && wantNode[n.ID] {
				objs.Nodes[n.ID] = Node{ID: n.ID, Lon: n.Lon, Lat: n.Lat, Tags: n.Tags}
			}
		}
	}

	return nil
}

func convertMembers(members []osmpbf.Member) []Member {
	out := make([]Member, len(members))
	for i, m := range members {
		var t MemberType
		switch m.Type {
		case osmpbf.NodeType:
			t = MemberNode
		case osmpbf.WayType:
			t = MemberWay
		case osmpbf.RelationType:
			t = MemberRelation
		}
		out[i] = Member{Type: t, Ref: m.ID, Role: m.Role}
	}
	return out
}

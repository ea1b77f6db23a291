package osm

// Predicate selects which relations and ways a Source scan should match;
// matched primitives and everything they transitively reference (member
// ways, member/way nodes) are returned together (§4.4 step 1's
// "get_objs_and_deps").
type Predicate struct {
	Relation func(tags map[string]string) bool
	Way      func(tags map[string]string) bool
}

// ObjStore is the spill-to-disk object map consumed by street ingestion
// (§9's design note): a write-through cache over an on-disk key-value
// store, keyed by OSM object id, so a planetary dump's object map need not
// fit in memory. See objstore.go for the in-memory and Mongo-backed
// implementations.
type ObjStore interface {
	PutNode(n Node) error
	PutWay(w Way) error
	GetWay(id int64) (Way, bool, error)
	GetNode(id int64) (Node, bool, error)

	// ForEachFilter streams every stored way matching kind without
	// loading the whole map into memory (§9).
	ForEachFilter(kind string, fn func(Way) error) error

	// ForEachNode streams every stored node the same way.
	ForEachNode(fn func(Node) error) error

	Close() error
}

// Source is the streaming OSM reader consumed by ingestion (§6): "a
// streaming reader whose interface is get_objs_and_deps(predicate) and
// get_objs_and_deps_store(predicate, store)". The on-disk PBF format
// itself is out of scope (§1's Non-goals); a concrete implementation
// (PBFSource, pbfsource.go) is provided for a runnable CLI.
type Source interface {
	// GetObjsAndDeps scans the dump, returning every relation/way matching
	// pred together with their transitive dependencies.
	GetObjsAndDeps(pred Predicate) (Objects, error)

	// GetObjsAndDepsStore is the store-backed variant: matched nodes/ways
	// are written into store instead of being returned (§5, §9).
	// Relations are returned directly rather than spilled. PBFSource
	// collects all matches in memory first and writes them to store after
	// the scan, so its peak memory use is that of GetObjsAndDeps.
	GetObjsAndDepsStore(pred Predicate, store ObjStore) (map[int64]Relation, error)
}

// SpillingSource adapts a Source so that GetObjsAndDeps spills its matched
// nodes/ways through Store via GetObjsAndDepsStore instead of accumulating
// them directly, then rebuilds the Objects ReadAdmins/ReadStreets expect by
// reading them back out of Store (§9's design note on the spill-to-disk
// object store). It trades the in-memory scan's single pass for a
// write-then-read-back round trip through Store, which is the price of
// keeping ReadAdmins/ReadStreets unaware of whether the object map ever
// touched disk.
type SpillingSource struct {
	Source
	Store ObjStore
}

func (s SpillingSource) GetObjsAndDeps(pred Predicate) (Objects, error) {
	relations, err := s.Source.GetObjsAndDepsStore(pred, s.Store)
	if err != nil {
		return Objects{}, err
	}

	objs := NewObjects()
	objs.Relations = relations
	if err := s.Store.ForEachNode(func(n Node) error {
		objs.Nodes[n.ID] = n
		return nil
	}); err != nil {
		return Objects{}, err
	}
	if err := s.Store.ForEachFilter("", func(w Way) error {
		objs.Ways[w.ID] = w
		return nil
	}); err != nil {
		return Objects{}, err
	}
	return objs, nil
}

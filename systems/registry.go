package systems

// Tick phase identifiers, in execution order.
const (
	PhaseSpawn      = "spawn"
	PhaseRoute      = "route"
	PhaseCounters   = "counters"
	PhaseQueueFlips = "queue_flips"
	PhaseArbitrate  = "arbitrate"
	PhaseCommit     = "commit"
	PhaseApplyFlips = "apply_flips"
	PhaseArrivals   = "arrivals"
)

// PhaseInfo describes one tick phase for logs and the HUD.
type PhaseInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this phase does
	Category    string // Grouping (e.g., "trains", "switches")
}

// PhaseRegistry holds metadata about the tick phases.
// This centralizes phase naming so the HUD and perf tracker stay in sync.
type PhaseRegistry struct {
	phases []PhaseInfo
	byID   map[string]PhaseInfo
}

// NewPhaseRegistry creates a registry with the tick pipeline in order.
func NewPhaseRegistry() *PhaseRegistry {
	reg := &PhaseRegistry{
		byID: make(map[string]PhaseInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the tick pipeline. Registration order is execution order.
func (r *PhaseRegistry) registerDefaults() {
	r.Register(PhaseInfo{ID: PhaseSpawn, Name: "Spawn", Description: "Places due trains on free spawn tiles", Category: "trains"})
	r.Register(PhaseInfo{ID: PhaseRoute, Name: "Route", Description: "Computes next direction and candidate cell", Category: "trains"})
	r.Register(PhaseInfo{ID: PhaseCounters, Name: "Counters", Description: "Decrements switch counters under trains", Category: "switches"})
	r.Register(PhaseInfo{ID: PhaseQueueFlips, Name: "Queue Flips", Description: "Queues flips for exhausted counters", Category: "switches"})
	r.Register(PhaseInfo{ID: PhaseArbitrate, Name: "Arbitrate", Description: "Resolves contested cells by priority", Category: "trains"})
	r.Register(PhaseInfo{ID: PhaseCommit, Name: "Commit", Description: "Moves trains, removes derailed ones", Category: "trains"})
	r.Register(PhaseInfo{ID: PhaseApplyFlips, Name: "Apply Flips", Description: "Toggles queued switches", Category: "switches"})
	r.Register(PhaseInfo{ID: PhaseArrivals, Name: "Arrivals", Description: "Finishes trains at their destination", Category: "trains"})
}

// Register adds a phase to the registry.
func (r *PhaseRegistry) Register(info PhaseInfo) {
	r.phases = append(r.phases, info)
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *PhaseRegistry) Get(id string) (PhaseInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *PhaseRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases in execution order.
func (r *PhaseRegistry) All() []PhaseInfo {
	return r.phases
}

// ByCategory returns phases filtered by category.
func (r *PhaseRegistry) ByCategory(category string) []PhaseInfo {
	var result []PhaseInfo
	for _, info := range r.phases {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// IDs returns all phase IDs in execution order.
func (r *PhaseRegistry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, info := range r.phases {
		ids[i] = info.ID
	}
	return ids
}

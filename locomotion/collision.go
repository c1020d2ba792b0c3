package locomotion

// Category tags a collider for the player's sensor.
type Category int

const (
	CategoryNone Category = iota
	CategoryGround
	CategoryClimbable
)

func (c Category) String() string {
	switch c {
	case CategoryGround:
		return "ground"
	case CategoryClimbable:
		return "climbable"
	default:
		return "none"
	}
}

// EventKind is the phase of an overlap event.
type EventKind int

const (
	EventBegin EventKind = iota + 1
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventBegin:
		return "begin"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// CollisionEvent is an unordered collider pair reported by the physics
// backend. Backends do not guarantee which side is A.
type CollisionEvent struct {
	Kind EventKind
	A    ColliderID
	B    ColliderID
}

// Tagger resolves the category of a collider.
type Tagger interface {
	CategoryOf(id ColliderID) (Category, bool)
}

// TagMap is a map-backed Tagger.
type TagMap map[ColliderID]Category

func (m TagMap) CategoryOf(id ColliderID) (Category, bool) {
	c, ok := m[id]
	if !ok || c == CategoryNone {
		return CategoryNone, false
	}
	return c, true
}

// Classify matches evt against the sensor in both orderings. It reports
// the category and the other collider when exactly one side is the sensor
// and the other side has a recognized category.
func Classify(evt CollisionEvent, sensor ColliderID, tags Tagger) (Category, ColliderID, bool) {
	if tags == nil {
		return CategoryNone, 0, false
	}
	var other ColliderID
	switch {
	case evt.A == sensor && evt.B != sensor:
		other = evt.B
	case evt.B == sensor && evt.A != sensor:
		other = evt.A
	default:
		return CategoryNone, 0, false
	}
	c, ok := tags.CategoryOf(other)
	if !ok {
		return CategoryNone, 0, false
	}
	switch c {
	case CategoryGround, CategoryClimbable:
		return c, other, true
	default:
		return CategoryNone, 0, false
	}
}

// Aggregator is the player's sensor record: one overlap set per category.
type Aggregator struct {
	Sensor    ColliderID
	Ground    OverlapSet
	Climbable OverlapSet

	// Logf receives unmatched-event chatter when set.
	Logf func(format string, args ...any)
}

func NewAggregator(sensor ColliderID) *Aggregator {
	return &Aggregator{Sensor: sensor}
}

// Apply folds one event into the sets and reports whether it matched.
func (a *Aggregator) Apply(evt CollisionEvent, tags Tagger) bool {
	if a == nil {
		return false
	}
	c, other, ok := Classify(evt, a.Sensor, tags)
	if !ok {
		a.debugf("locomotion: ignoring %s event %d<->%d for sensor %d", evt.Kind, evt.A, evt.B, a.Sensor)
		return false
	}
	set := a.set(c)
	switch evt.Kind {
	case EventBegin:
		set.Insert(other)
	case EventEnd:
		set.Remove(other)
	default:
		a.debugf("locomotion: ignoring event with kind %d", int(evt.Kind))
		return false
	}
	return true
}

// Drain applies every event in order.
func (a *Aggregator) Drain(events []CollisionEvent, tags Tagger) {
	for _, evt := range events {
		a.Apply(evt, tags)
	}
}

// Purge drops members of both sets that are no longer alive.
func (a *Aggregator) Purge(alive func(ColliderID) bool) int {
	if a == nil {
		return 0
	}
	n := a.Ground.Purge(alive) + a.Climbable.Purge(alive)
	if n > 0 {
		a.debugf("locomotion: purged %d stale colliders from sensor %d", n, a.Sensor)
	}
	return n
}

// Reset clears both sets.
func (a *Aggregator) Reset() {
	if a == nil {
		return
	}
	a.Ground.Clear()
	a.Climbable.Clear()
}

func (a *Aggregator) IsOnGround() bool {
	return a != nil && !a.Ground.Empty()
}

func (a *Aggregator) IsInClimbRange() bool {
	return a != nil && !a.Climbable.Empty()
}

func (a *Aggregator) set(c Category) *OverlapSet {
	if c == CategoryClimbable {
		return &a.Climbable
	}
	return &a.Ground
}

func (a *Aggregator) debugf(format string, args ...any) {
	if a.Logf != nil {
		a.Logf(format, args...)
	}
}

package filter

// State is the one criteria set of a search session. It is owned by the
// session controller, the only writer; everything else reads snapshots.
type State struct {
	c Criteria
}

func NewState() *State { return &State{} }

// Criteria returns a snapshot of the current criteria.
func (s *State) Criteria() Criteria { return s.c }

func (s *State) Query() string { return s.c.Query }

func (s *State) SetQuery(q string) { s.c.Query = q }

func (s *State) SetCity(city string) { s.c.City = city }

func (s *State) SetType(typ string) { s.c.Type = typ }

func (s *State) SetName(name string) { s.c.Name = name }

// Clear unsets every dimension.
func (s *State) Clear() { s.c = Criteria{} }

package source

// Position is a zero-based line and character offset. Character counts UTF-16
// code units, matching the protocol convention.
type Position struct {
	Line      int
	Character int
}

// Before reports whether p sorts strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// Range is a half-open interval [Start, End) between two positions.
type Range struct {
	Start Position
	End   Position
}

// Empty reports whether the range covers no characters.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Contains reports whether pos lies inside the range. The end position is
// included so a cursor placed right after a token still hits it.
func (r Range) Contains(pos Position) bool {
	return !pos.Before(r.Start) && !r.End.Before(pos)
}

// Intersects reports whether two ranges share at least one position.
func (r Range) Intersects(other Range) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}

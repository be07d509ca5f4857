package enums

// DonorRank is the discrete tier derived from lifetime total donated.
type DonorRank string

const (
	DonorRankBronze  DonorRank = "Bronze"
	DonorRankArgent  DonorRank = "Argent"
	DonorRankOr      DonorRank = "Or"
	DonorRankPlatine DonorRank = "Platine"
)

var donorRankOrder = map[DonorRank]int{
	DonorRankBronze:  0,
	DonorRankArgent:  1,
	DonorRankOr:      2,
	DonorRankPlatine: 3,
}

// String implements fmt.Stringer.
func (r DonorRank) String() string {
	return string(r)
}

// IsValid reports whether the value is a known DonorRank.
func (r DonorRank) IsValid() bool {
	_, ok := donorRankOrder[r]
	return ok
}

// Ordinal returns the rank position with Bronze lowest. Unknown ranks sort first.
func (r DonorRank) Ordinal() int {
	if ord, ok := donorRankOrder[r]; ok {
		return ord
	}
	return -1
}

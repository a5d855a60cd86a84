package artifact

import "time"

// Candidate describes one file considered by a ranking policy.
type Candidate struct {
	// Path is the candidate's filesystem path.
	Path string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the file's last modification time.
	ModTime time.Time
}

// Policy selects how Rank orders candidates.
type Policy int

const (
	// LargestOnly prefers the biggest file. Used for executable discovery,
	// on the heuristic that the real application binary outweighs helpers.
	LargestOnly Policy = iota
	// NewestThenLargest prefers the most recently modified file, breaking
	// ties by size. Used for packer-stub selection after a fresh compile.
	NewestThenLargest
)

// Rank returns the best candidate under the given policy.
// The second return is false when candidates is empty.
func Rank(candidates []Candidate, policy Policy) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	best := candidates[0]

	for _, c := range candidates[1:] {
		if better(c, best, policy) {
			best = c
		}
	}

	return best, true
}

// better reports whether a should be preferred over b under the policy.
func better(a, b Candidate, policy Policy) bool {
	if policy == NewestThenLargest {
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
	}

	return a.Size > b.Size
}

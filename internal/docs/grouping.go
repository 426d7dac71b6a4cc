package docs

// DefaultMaxGroupSize is the largest file group a single agent pass is
// expected to digest.
const DefaultMaxGroupSize = 42

// GroupFiles breaks a file list into the fewest groups of at most
// maxGroupSize files, split as evenly as possible. A list that fits
// stays a single group. A non-positive maxGroupSize means
// DefaultMaxGroupSize.
func GroupFiles(files []string, maxGroupSize int) [][]string {
	if maxGroupSize <= 0 {
		maxGroupSize = DefaultMaxGroupSize
	}

	numFiles := len(files)
	if numFiles == 0 {
		return nil
	}

	numGroups := numFiles / maxGroupSize
	if numFiles%maxGroupSize != 0 {
		numGroups++
	}

	perGroup := numFiles / numGroups
	remainder := numFiles % numGroups

	groups := make([][]string, 0, numGroups)
	start := 0
	for i := 0; i < numGroups; i++ {
		size := perGroup
		// Early groups absorb the remainder one file each.
		if i < remainder {
			size++
		}
		groups = append(groups, files[start:start+size])
		start += size
	}
	return groups
}

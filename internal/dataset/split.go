package dataset

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/roadlab/stats19/internal/models"
)

// Split divides accidents into train and test sets. The input is sorted by
// accident index before shuffling so the same seed always produces the same
// split regardless of ingest order. With stratify set, each severity class is
// split separately so class balance carries over to both sets.
func Split(accidents []*models.Accident, trainRatio float64, seed int64, stratify bool) (train, test []*models.Accident, err error) {
	if trainRatio <= 0 || trainRatio >= 1 {
		return nil, nil, fmt.Errorf("train ratio must be in (0,1), got %g", trainRatio)
	}

	ordered := make([]*models.Accident, len(accidents))
	copy(ordered, accidents)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].AccidentIndex < ordered[j].AccidentIndex
	})

	rng := rand.New(rand.NewSource(seed))

	if !stratify {
		train, test = splitGroup(ordered, trainRatio, rng)
		return train, test, nil
	}

	bySeverity := make(map[int][]*models.Accident)
	for _, a := range ordered {
		bySeverity[a.Severity] = append(bySeverity[a.Severity], a)
	}

	// iterate classes in a fixed order so the rng stream is stable
	severities := make([]int, 0, len(bySeverity))
	for s := range bySeverity {
		severities = append(severities, s)
	}
	sort.Ints(severities)

	for _, s := range severities {
		tr, te := splitGroup(bySeverity[s], trainRatio, rng)
		train = append(train, tr...)
		test = append(test, te...)
	}
	return train, test, nil
}

func splitGroup(group []*models.Accident, trainRatio float64, rng *rand.Rand) (train, test []*models.Accident) {
	shuffled := make([]*models.Accident, len(group))
	copy(shuffled, group)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(float64(len(shuffled))*trainRatio + 0.5)
	if cut > len(shuffled) {
		cut = len(shuffled)
	}
	return shuffled[:cut], shuffled[cut:]
}

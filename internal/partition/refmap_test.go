package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRefMap(t *testing.T) {
	rollup := RangeMap{
		"p202301_202302": {day(2023, 1, 1), day(2023, 2, 1)},
		"p202302_202303": {day(2023, 2, 1), day(2023, 3, 1)},
	}
	base := RangeMap{
		"p20230115_20230116": {day(2023, 1, 15), day(2023, 1, 16)},
		"p20230131_20230201": {day(2023, 1, 31), day(2023, 2, 1)},
		"p20230201_20230202": {day(2023, 2, 1), day(2023, 2, 2)},
	}

	ref := BuildRefMap(rollup, base)

	assert.Equal(t, RefMap{
		"p202301_202302": {
			"p20230115_20230116": true,
			"p20230131_20230201": true,
		},
		"p202302_202303": {
			"p20230201_20230202": true,
		},
	}, ref)
}

// Every src name gets an entry even when nothing overlaps it, and a range
// that merely touches a src range must not appear in its set.
func TestBuildRefMapEmptyEntriesAndTouching(t *testing.T) {
	src := RangeMap{
		"lonely": {day(2024, 6, 1), day(2024, 7, 1)},
	}
	dst := RangeMap{
		"before": {day(2024, 5, 1), day(2024, 6, 1)},
		"after":  {day(2024, 7, 1), day(2024, 8, 1)},
	}

	ref := BuildRefMap(src, dst)
	assert.Equal(t, RefMap{"lonely": {}}, ref)
}

func TestBuildRefMapEmptyInputs(t *testing.T) {
	assert.Empty(t, BuildRefMap(RangeMap{}, RangeMap{}))
	dst := RangeMap{"d": {day(2023, 1, 1), day(2023, 1, 2)}}
	assert.Empty(t, BuildRefMap(RangeMap{}, dst))
}

package form990

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/form990-cli/internal/schedule"
)

func TestProcessCompensation_OrderAndCleanup(t *testing.T) {
	people, err := ProcessCompensation(context.Background(), fullFetcher(), "1", Return990().Compensation)
	require.NoError(t, err)
	require.Len(t, people, 2)

	name0, _ := people[0].Get("person")
	title0, _ := people[0].Get("title")
	base0, _ := people[0].Get("base_org")
	assert.Equal(t, "John Smith", name0)
	assert.Equal(t, "Chief Executive", title0)
	assert.Equal(t, int64(150000), base0)

	name1, _ := people[1].Get("person")
	title1, _ := people[1].Get("title")
	assert.Equal(t, "Mary Jones", name1)
	assert.Equal(t, "Cfo", title1)
}

func TestProcessCompensation_BusinessNameFallback(t *testing.T) {
	f := &fakeFetcher{results: map[string]*schedule.Result{
		schedule.ScheduleJ: compResult(schedule.Part{"BsnssNmLn1Txt": "Jane Doe LLC", "TtlTxt": "consultant"}),
	}}
	people, err := ProcessCompensation(context.Background(), f, "1", Return990().Compensation)
	require.NoError(t, err)
	require.Len(t, people, 1)

	v, _ := people[0].Get("person")
	assert.Equal(t, "Jane Doe Llc", v)
}

func TestProcessCompensation_BadNumericIsolated(t *testing.T) {
	f := &fakeFetcher{results: map[string]*schedule.Result{
		schedule.ScheduleJ: compResult(
			schedule.Part{"PrsnNm": "A", "BsCmpnstnFlngOrgAmt": "not a number", "BnsFlngOrgnztnAmnt": "500"},
			schedule.Part{"PrsnNm": "B", "BsCmpnstnFlngOrgAmt": "100"},
		),
	}}
	people, err := ProcessCompensation(context.Background(), f, "1", Return990().Compensation)
	require.NoError(t, err)
	require.Len(t, people, 2)

	base, ok := people[0].Get("base_org")
	assert.True(t, ok)
	assert.Nil(t, base)
	bonus, _ := people[0].Get("bonus_org")
	assert.Equal(t, int64(500), bonus)
	name, _ := people[0].Get("person")
	assert.Equal(t, "A", name)

	base1, _ := people[1].Get("base_org")
	assert.Equal(t, int64(100), base1)
}

func TestProcessCompensation_EveryFieldPresent(t *testing.T) {
	f := &fakeFetcher{results: map[string]*schedule.Result{
		schedule.ScheduleJ: compResult(schedule.Part{}),
	}}
	spec := Return990().Compensation
	people, err := ProcessCompensation(context.Background(), f, "1", spec)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, len(spec.Fields), people[0].Len())
	for _, k := range people[0].Keys() {
		v, _ := people[0].Get(k)
		assert.Nil(t, v, k)
	}
}

func TestProcessCompensation_EmptyGroup(t *testing.T) {
	f := &fakeFetcher{results: map[string]*schedule.Result{schedule.ScheduleJ: compResult()}}
	people, err := ProcessCompensation(context.Background(), f, "1", Return990().Compensation)
	require.NoError(t, err)
	assert.NotNil(t, people)
	assert.Empty(t, people)
}

func TestProcessCompensation_MissingGroup(t *testing.T) {
	f := &fakeFetcher{results: map[string]*schedule.Result{
		schedule.ScheduleJ: {Name: schedule.ScheduleJ, Groups: map[string][]schedule.Part{}},
	}}
	people, err := ProcessCompensation(context.Background(), f, "1", Return990().Compensation)
	require.NoError(t, err)
	assert.Nil(t, people)
}

func TestProcessCompensation_Unimplemented(t *testing.T) {
	_, err := ProcessCompensation(context.Background(), &fakeFetcher{}, "1", nil)
	assert.True(t, errors.Is(err, ErrUnimplementedVariant))
}

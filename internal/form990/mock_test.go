package form990

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/form990-cli/internal/schedule"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fakeFetcher serves canned schedule results keyed by schedule name.
type fakeFetcher struct {
	results map[string]*schedule.Result
	errs    map[string]error
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, name string) (*schedule.Result, error) {
	f.calls = append(f.calls, name)
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	res, ok := f.results[name]
	if !ok {
		return nil, schedule.ErrNoSchedule
	}
	return res, nil
}

func headerResult(p schedule.Part) *schedule.Result {
	return &schedule.Result{
		Name:  schedule.ReturnHeader,
		Parts: map[string]schedule.Part{headerPart: p},
	}
}

func balanceResult(p schedule.Part) *schedule.Result {
	return &schedule.Result{
		Name:  schedule.IRS990,
		Parts: map[string]schedule.Part{"part_viii": p},
	}
}

func compResult(entries ...schedule.Part) *schedule.Result {
	if entries == nil {
		entries = []schedule.Part{}
	}
	return &schedule.Result{
		Name:   schedule.ScheduleJ,
		Groups: map[string][]schedule.Part{"SkdJRltdOrgOffcrTrstKyEmpl": entries},
	}
}

func fullFetcher() *fakeFetcher {
	return &fakeFetcher{results: map[string]*schedule.Result{
		schedule.ReturnHeader: headerResult(schedule.Part{
			"ein":                   "12-3456789",
			"USAddrss_SttAbbrvtnCd": "ny",
			"USAddrss_CtyNm":        "new york",
			"RtrnHdr_TxYr":          "2015",
			"BsnssNm_BsnssNmLn1Txt": "HELPING HANDS FOUNDATION",
			"RtrnHdr_TxPrdEndDt":    "2016-06-30",
		}),
		schedule.IRS990: balanceResult(schedule.Part{
			"TtlCntrbtnsAmt":  "1000",
			"GvrnmntGrntsAmt": "250",
		}),
		schedule.ScheduleJ: compResult(
			schedule.Part{"PrsnNm": "JOHN SMITH", "TtlTxt": "CHIEF EXECUTIVE", "BsCmpnstnFlngOrgAmt": "150000"},
			schedule.Part{"PrsnNm": "mary jones", "TtlTxt": "cfo", "BsCmpnstnFlngOrgAmt": "90000"},
		),
	}}
}

package form990

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/form990-cli/internal/schedule"
)

const headerPart = "returnheader990x_part_i"

// headerFields is shared by every variant.
var headerFields = []FieldSpec{
	{Output: "ein", Source: "ein", Type: TypeString},
	{Output: "state", Source: "USAddrss_SttAbbrvtnCd", Type: TypeString, Cleanup: Upper},
	{Output: "city", Source: "USAddrss_CtyNm", Type: TypeString, Cleanup: Title},
	{Output: "tax_year", Source: "RtrnHdr_TxYr", Type: TypeInt},
	{Output: "org", Source: "BsnssNm_BsnssNmLn1Txt", Type: TypeString, Cleanup: Title},
	{Output: "fiscal_year", Source: "RtrnHdr_TxPrdEndDt", Type: TypeYear},
	{Output: "dba", Source: "BsnssNm_BsnssNmLn1Txt", Type: TypeString},
}

// HeaderFields returns the output names of the header record, in order.
func HeaderFields() []string {
	names := make([]string, len(headerFields))
	for i, f := range headerFields {
		names[i] = f.Output
	}
	return names
}

// ProcessHeader extracts filing identity fields from the return header.
// It returns a nil record when the header schedule or its part is missing.
func ProcessHeader(ctx context.Context, f schedule.Fetcher, filingID string) (*Record, error) {
	log := zap.L().With(zap.String("component", "form990.header"), zap.String("object_id", filingID))

	res, err := f.Fetch(ctx, filingID, schedule.ReturnHeader)
	if errors.Is(err, schedule.ErrNoSchedule) {
		log.Warn("header schedule missing")
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "form990: fetch header for %s", filingID)
	}

	part, ok := res.Part(headerPart)
	if !ok {
		log.Warn("header part missing", zap.String("part", headerPart))
		return nil, nil
	}

	return extract(part, headerFields, log), nil
}

package store

import (
	"go.uber.org/zap"

	"github.com/sells-group/form990-cli/internal/form990"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testFiling() (*form990.Filing, []*form990.Record) {
	header := form990.NewRecord()
	header.Set("ein", "123456789")
	header.Set("tax_year", int64(2015))

	balance := form990.NewRecord()
	balance.Set("total_contrib", int64(1000000))

	p1 := form990.NewRecord()
	p1.Set("person", "John Smith")
	p1.Set("bonus_org", int64(25000))
	p2 := form990.NewRecord()
	p2.Set("person", "Jane Doe Llc")
	p2.Set("bonus_org", nil)

	f := &form990.Filing{
		ID:      "201711109349301001",
		Form:    form990.Form990,
		Header:  header,
		Balance: balance,
		People:  []*form990.Record{p1, p2},
	}
	return f, f.Flatten(form990.FlattenOptions{})
}

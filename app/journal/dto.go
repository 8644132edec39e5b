package journal

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/joefazee/categorical/models"
)

// ListQuery represents the journal listing query string
type ListQuery struct {
	Source  string `form:"source"`
	Subject string `form:"subject"`
	Actor   string `form:"actor"`
	Kind    string `form:"kind"`
	Offset  int    `form:"offset" binding:"min=0"`
	Limit   int    `form:"limit" binding:"min=0"`
}

// ToFilter converts the query into a store filter. Addresses are
// checksummed so they match the stored form.
func (q *ListQuery) ToFilter() Filter {
	f := Filter{
		Source: models.JournalSource(q.Source),
		Kind:   q.Kind,
		Offset: q.Offset,
		Limit:  q.Limit,
	}
	if q.Subject != "" {
		f.Subject = common.HexToAddress(q.Subject).Hex()
	}
	if q.Actor != "" {
		f.Actor = common.HexToAddress(q.Actor).Hex()
	}
	return f
}

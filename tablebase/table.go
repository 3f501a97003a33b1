package tablebase

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Table answers key lookups over records sorted ascending by key.
type Table struct {
	recs []Record
}

func NewTable(recs []Record) (*Table, error) {
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Key >= recs[i].Key {
			return nil, fmt.Errorf("%w: index %d", ErrUnsorted, i)
		}
	}
	return &Table{recs: recs}, nil
}

// Load reads and indexes a table file.
func Load(path string) (*Table, error) {
	recs, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Table{recs: recs}, nil
}

func (t *Table) Probe(key uint64) (Record, bool) {
	i := sort.Search(len(t.recs), func(i int) bool {
		return t.recs[i].Key >= key
	})
	if i < len(t.recs) && t.recs[i].Key == key {
		return t.recs[i], true
	}
	return Record{}, false
}

func (t *Table) Len() int {
	return len(t.recs)
}

func (t *Table) Records() []Record {
	return t.recs
}

type Summary struct {
	Total  int
	Win    int
	Draw   int
	Loss   int
	MaxDTM uint16
}

func (t *Table) Summary() Summary {
	s := Summary{
		Total: len(t.recs),
		Win:   lo.CountBy(t.recs, func(r Record) bool { return r.WDL == WDLWin }),
		Draw:  lo.CountBy(t.recs, func(r Record) bool { return r.WDL == WDLDraw }),
		Loss:  lo.CountBy(t.recs, func(r Record) bool { return r.WDL == WDLLoss }),
	}
	if len(t.recs) != 0 {
		s.MaxDTM = lo.MaxBy(t.recs, func(a, b Record) bool { return a.DTM > b.DTM }).DTM
	}
	return s
}

func (s Summary) String() string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("positions: %d\twin: %d\tdraw: %d\tloss: %d\tmax dtm: %d", s.Total, s.Win, s.Draw, s.Loss, s.MaxDTM)
}

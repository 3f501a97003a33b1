package retro

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/daystram/tinyhouse/board"
	"github.com/daystram/tinyhouse/tablebase"
)

var ErrInvariantViolation = errors.New("solver invariant violated")

const (
	DefaultProgressInterval = 1 << 18

	// cancelCheckInterval is how many discovered nodes pass between context checks.
	cancelCheckInterval = 1 << 10
)

type status uint8

const (
	statusUnknown status = iota
	statusWin
	statusLoss
	statusDraw
)

type node struct {
	status    status
	mated     bool // terminal and in check
	dtm       uint16
	outdeg    uint16
	remaining uint16
	best      board.Move
}

// edge is one legal move; every move gets its own edge even when two moves
// reach the same child.
type edge struct {
	parent int32
	child  int32
	move   board.Move
}

type frame struct {
	id    int32
	start int // first move in the shared move stack
	next  int
	end   int
}

type config struct {
	logger           zerolog.Logger
	validate         bool
	progressInterval int
}

type Option func(*config)

func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithValidation toggles the full consistency check of every discovered position.
func WithValidation(v bool) Option {
	return func(c *config) {
		c.validate = v
	}
}

func WithProgressInterval(n int) Option {
	return func(c *config) {
		c.progressInterval = n
	}
}

type Stats struct {
	Nodes     int
	Edges     int
	Terminals int
	Win       int
	Draw      int
	Loss      int
	MaxDTM    uint16
	Elapsed   time.Duration
}

func (s Stats) String() string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("nodes: %d\tedges: %d\tterminals: %d\twin: %d\tdraw: %d\tloss: %d\tmax dtm: %d\ttime: %s",
		s.Nodes, s.Edges, s.Terminals, s.Win, s.Draw, s.Loss, s.MaxDTM, s.Elapsed.Round(time.Millisecond))
}

type Result struct {
	keys  []uint64
	nodes []node
	stats Stats
}

func (r *Result) Stats() Stats {
	return r.stats
}

// Records returns one record per reachable position, sorted by key.
func (r *Result) Records() []tablebase.Record {
	recs := make([]tablebase.Record, len(r.nodes))
	for i, n := range r.nodes {
		recs[i] = tablebase.Record{
			Key:  r.keys[i],
			WDL:  n.status.wdl(),
			DTM:  n.dtm,
			Best: n.best,
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Key < recs[j].Key
	})
	return recs
}

func (s status) wdl() tablebase.WDL {
	switch s {
	case statusWin:
		return tablebase.WDLWin
	case statusLoss:
		return tablebase.WDLLoss
	default:
		return tablebase.WDLDraw
	}
}

type solver struct {
	cfg    config
	log    zerolog.Logger
	cursor Cursor

	index map[uint64]int32
	keys  []uint64
	nodes []node
	edges []edge

	// CSR views over edges
	childStart  []int32 // by parent, move order preserved
	childEdges  []int32
	parentStart []int32 // by child
	parentEdges []int32
}

// Solve classifies every position reachable from the cursor's current
// position. The cursor is returned to that position on success. Any error
// leaves no result.
func Solve(ctx context.Context, cursor Cursor, opts ...Option) (*Result, error) {
	cfg := config{
		logger:           zerolog.Nop(),
		validate:         true,
		progressInterval: DefaultProgressInterval,
	}
	for _, f := range opts {
		f(&cfg)
	}
	if cfg.progressInterval <= 0 {
		cfg.progressInterval = DefaultProgressInterval
	}

	s := &solver{
		cfg:    cfg,
		log:    cfg.logger.With().Str("component", "retro").Logger(),
		cursor: cursor,
		index:  make(map[uint64]int32, 1<<12),
	}

	start := time.Now()
	if err := s.discover(ctx); err != nil {
		return nil, err
	}
	s.log.Info().Int("nodes", len(s.nodes)).Int("edges", len(s.edges)).Dur("elapsed", time.Since(start)).Msg("graph-discovered")

	if err := s.link(); err != nil {
		return nil, err
	}
	terminals := s.classifyTerminals()
	s.log.Info().Int("terminals", len(terminals)).Msg("terminals-classified")

	if err := s.propagate(ctx, terminals); err != nil {
		return nil, err
	}
	draws := s.labelDraws()
	s.log.Info().Int("draws", draws).Msg("propagation-done")

	if err := s.refine(); err != nil {
		return nil, err
	}

	r := &Result{keys: s.keys, nodes: s.nodes}
	r.stats = s.stats(len(terminals))
	r.stats.Elapsed = time.Since(start)
	s.log.Info().Str("stats", r.stats.String()).Msg("solve-done")
	return r, nil
}

// intern returns the id for key, allocating a node on first sight.
func (s *solver) intern(key uint64) (int32, bool, error) {
	if id, ok := s.index[key]; ok {
		return id, false, nil
	}
	if len(s.nodes) >= math.MaxInt32 {
		return 0, false, fmt.Errorf("%w: node id space exhausted", ErrInvariantViolation)
	}
	id := int32(len(s.nodes))
	s.index[key] = id
	s.keys = append(s.keys, key)
	s.nodes = append(s.nodes, node{})
	return id, true, nil
}

// expand records the out-degree of the current position and returns its
// frame over the moves appended to the shared stack.
func (s *solver) expand(id int32, moves []board.Move) (frame, []board.Move, error) {
	if s.cfg.validate {
		if err := s.cursor.Validate(); err != nil {
			return frame{}, moves, fmt.Errorf("%w: node %d: %v", ErrInvariantViolation, id, err)
		}
		if s.cursor.Key() != s.keys[id] {
			return frame{}, moves, fmt.Errorf("%w: node %d: key drifted", ErrInvariantViolation, id)
		}
	}
	start := len(moves)
	moves = s.cursor.Moves(moves)
	n := len(moves) - start
	if n > math.MaxUint16 {
		return frame{}, moves[:start], fmt.Errorf("%w: node %d: %d moves", ErrInvariantViolation, id, n)
	}
	nd := &s.nodes[id]
	nd.outdeg = uint16(n)
	nd.remaining = uint16(n)
	nd.mated = n == 0 && s.cursor.InCheck()
	return frame{id: id, start: start, next: start, end: len(moves)}, moves, nil
}

// discover walks the graph depth first with an explicit frame stack, leaving
// the cursor where it started on every exit path.
func (s *solver) discover(ctx context.Context) (err error) {
	var (
		frames = make([]frame, 0, 256)
		moves  = make([]board.Move, 0, 4096)
	)
	defer func() {
		for i := len(frames) - 1; i > 0; i-- {
			s.cursor.Pop()
		}
	}()

	rootID, _, err := s.intern(s.cursor.Key())
	if err != nil {
		return err
	}
	root, moves, err := s.expand(rootID, moves)
	if err != nil {
		return err
	}
	frames = append(frames, root)

	for len(frames) != 0 {
		f := &frames[len(frames)-1]
		if f.next == f.end {
			moves = moves[:f.start]
			frames = frames[:len(frames)-1]
			if len(frames) != 0 {
				s.cursor.Pop()
			}
			continue
		}

		mv := moves[f.next]
		f.next++
		parent := f.id

		s.cursor.Push(mv)
		child, fresh, err := s.intern(s.cursor.Key())
		if err != nil {
			s.cursor.Pop()
			return err
		}
		s.edges = append(s.edges, edge{parent: parent, child: child, move: mv})
		if !fresh {
			s.cursor.Pop()
			continue
		}

		n := len(s.nodes)
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				s.cursor.Pop()
				return err
			}
		}
		if n%s.cfg.progressInterval == 0 {
			s.log.Debug().Int("nodes", n).Int("edges", len(s.edges)).Int("depth", len(frames)).Msg("discovering")
		}
		var next frame
		if next, moves, err = s.expand(child, moves); err != nil {
			s.cursor.Pop()
			return err
		}
		frames = append(frames, next)
	}
	return nil
}

// link builds the forward and reverse adjacency over the edge list and
// checks every node's out-degree against its recorded edges.
func (s *solver) link() error {
	n := len(s.nodes)
	s.childStart = make([]int32, n+1)
	s.parentStart = make([]int32, n+1)
	for _, e := range s.edges {
		s.childStart[e.parent+1]++
		s.parentStart[e.child+1]++
	}
	for i := 0; i < n; i++ {
		if got, want := s.childStart[i+1], int32(s.nodes[i].outdeg); got != want {
			return fmt.Errorf("%w: node %d has %d edges, out-degree %d", ErrInvariantViolation, i, got, want)
		}
		s.childStart[i+1] += s.childStart[i]
		s.parentStart[i+1] += s.parentStart[i]
	}

	s.childEdges = make([]int32, len(s.edges))
	s.parentEdges = make([]int32, len(s.edges))
	childFill := append([]int32(nil), s.childStart[:n]...)
	parentFill := append([]int32(nil), s.parentStart[:n]...)
	for i, e := range s.edges {
		s.childEdges[childFill[e.parent]] = int32(i)
		childFill[e.parent]++
		s.parentEdges[parentFill[e.child]] = int32(i)
		parentFill[e.child]++
	}
	return nil
}

// classifyTerminals marks positions without moves: mated is a loss and
// stalemated is a win for the side to move.
func (s *solver) classifyTerminals() []int32 {
	queue := make([]int32, 0, 1024)
	for i := range s.nodes {
		nd := &s.nodes[i]
		if nd.outdeg != 0 {
			continue
		}
		nd.status = statusWin
		if nd.mated {
			nd.status = statusLoss
		}
		nd.dtm = 0
		queue = append(queue, int32(i))
	}
	return queue
}

// propagate runs the backward breadth-first fixpoint from the terminals. The
// queue stays ordered by non-decreasing distance.
func (s *solver) propagate(ctx context.Context, queue []int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for head := 0; head < len(queue); head++ {
		if head%(cancelCheckInterval*64) == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		v := queue[head]
		vn := s.nodes[v]
		if vn.dtm == math.MaxUint16 {
			return fmt.Errorf("%w: node %d: distance overflow", ErrInvariantViolation, v)
		}

		for _, ei := range s.parentEdges[s.parentStart[v]:s.parentStart[v+1]] {
			p := s.edges[ei].parent
			pn := &s.nodes[p]
			if pn.status != statusUnknown {
				continue
			}
			switch vn.status {
			case statusLoss:
				pn.status = statusWin
				pn.dtm = vn.dtm + 1
				queue = append(queue, p)
			case statusWin:
				if pn.remaining == 0 {
					return fmt.Errorf("%w: node %d: counter underflow", ErrInvariantViolation, p)
				}
				pn.remaining--
				if pn.remaining == 0 {
					pn.status = statusLoss
					pn.dtm = vn.dtm + 1
					queue = append(queue, p)
				}
			}
		}
	}
	return nil
}

func (s *solver) labelDraws() int {
	var draws int
	for i := range s.nodes {
		if s.nodes[i].status == statusUnknown {
			s.nodes[i].status = statusDraw
			s.nodes[i].dtm = 0
			draws++
		}
	}
	return draws
}

// refine picks each node's best move and rechecks that every label agrees with
// its children. Drawn nodes keep the first move into another draw.
func (s *solver) refine() error {
	for i := range s.nodes {
		nd := &s.nodes[i]
		out := s.childEdges[s.childStart[i]:s.childStart[i+1]]
		if len(out) == 0 {
			nd.best = board.MoveNull
			continue
		}

		var (
			best    = board.MoveNull
			bestDTM uint16
			found   bool
		)
		for _, ei := range out {
			e := s.edges[ei]
			c := s.nodes[e.child]
			switch nd.status {
			case statusWin:
				if c.status == statusLoss && (!found || c.dtm < bestDTM) {
					best, bestDTM, found = e.move, c.dtm, true
				}
			case statusLoss:
				if c.status != statusWin {
					return fmt.Errorf("%w: lost node %d has a %s child", ErrInvariantViolation, i, c.status.wdl())
				}
				if !found || c.dtm > bestDTM {
					best, bestDTM, found = e.move, c.dtm, true
				}
			case statusDraw:
				if c.status == statusLoss {
					return fmt.Errorf("%w: drawn node %d has a lost child", ErrInvariantViolation, i)
				}
				if c.status == statusDraw && !found {
					best, found = e.move, true
				}
			}
		}
		if !found {
			return fmt.Errorf("%w: node %d (%s) has no supporting move", ErrInvariantViolation, i, nd.status.wdl())
		}
		if nd.status != statusDraw && bestDTM+1 != nd.dtm {
			return fmt.Errorf("%w: node %d: distance %d, best child %d", ErrInvariantViolation, i, nd.dtm, bestDTM)
		}
		nd.best = best
	}
	return nil
}

func (s *solver) stats(terminals int) Stats {
	st := Stats{
		Nodes:     len(s.nodes),
		Edges:     len(s.edges),
		Terminals: terminals,
	}
	for _, nd := range s.nodes {
		switch nd.status {
		case statusWin:
			st.Win++
		case statusLoss:
			st.Loss++
		case statusDraw:
			st.Draw++
		}
		if nd.dtm > st.MaxDTM {
			st.MaxDTM = nd.dtm
		}
	}
	return st
}

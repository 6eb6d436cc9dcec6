package disasm

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/snesdisasm/internal/address"
	"github.com/retroenv/snesdisasm/internal/arch/m65816"
	"github.com/retroenv/snesdisasm/internal/chunks"
	"github.com/retroenv/snesdisasm/internal/jumptable"
	"github.com/retroenv/snesdisasm/internal/program"
)

// cancelCheckInterval is the number of steps between checks of the context.
const cancelCheckInterval = 256

type stepKind uint8

const (
	basicBlockStep stepKind = iota
	subroutineStep
)

// callFrame is a subroutine analysis that waits for a callee to complete.
type callFrame struct {
	start    address.Linear
	entrance address.Logical
}

// step is an entry of the worklist.
type step struct {
	kind     stepKind
	start    address.Linear
	entrance address.Logical

	processor m65816.Processor // basic blocks only

	callers     []callFrame // subroutines only, the direct caller is last
	suspended   bool
	suspendedAt int // walk progress when the step was requeued
}

// inCallHierarchy returns whether the subroutine at start is the analysed
// subroutine or one of its callers.
func (s step) inCallHierarchy(start address.Linear) bool {
	if s.start == start {
		return true
	}
	return slices.ContainsFunc(s.callers, func(frame callFrame) bool {
		return frame.start == start
	})
}

// callee returns the step to analyse a subroutine called by this subroutine.
func (s step) callee(start address.Linear, entrance address.Logical) step {
	callers := make([]callFrame, len(s.callers), len(s.callers)+1)
	copy(callers, s.callers)
	return step{
		kind:     subroutineStep,
		start:    start,
		entrance: entrance,
		callers:  append(callers, callFrame{start: s.start, entrance: s.entrance}),
	}
}

// worklist processes all steps pushed to the front, latest first, before the steps
// pushed to the back in their order.
type worklist struct {
	front []step
	back  []step
}

func (w *worklist) pushFront(s step) {
	w.front = append(w.front, s)
}

func (w *worklist) pushBack(s step) {
	w.back = append(w.back, s)
}

func (w *worklist) pop() (step, bool) {
	if n := len(w.front); n > 0 {
		s := w.front[n-1]
		w.front = w.front[:n-1]
		return s, true
	}
	if len(w.back) > 0 {
		s := w.back[0]
		w.back = w.back[1:]
		return s, true
	}
	return step{}, false
}

// subroutine is the analysis state of a subroutine, keyed by its start.
type subroutine struct {
	blocks    []int // chunk indices of the analysed blocks
	analysed  set.Set[address.Linear]
	remaining []address.Linear
	final     m65816.Processor // processor state at the return
	complete  bool
	failed    bool
}

// walker drains the worklist of basic block and subroutine steps until the chunk
// store contains all code reachable from the entry points.
type walker struct {
	logger       *log.Logger
	rom          []byte
	mapping      address.Mapping
	decoder      *m65816.Decoder
	registry     *jumptable.Registry
	detectTables bool
	store        *chunks.Store

	queue    worklist
	progress int // number of processed basic block steps

	analysedStarts set.Set[address.Linear]
	queuedSubs     set.Set[address.Linear]
	subroutines    map[address.Linear]*subroutine
	returns        map[address.Linear][]address.Linear // return addresses of the calls of a subroutine
	deadEnds       set.Set[address.Linear]             // addresses that will never be decoded
	forced         set.Set[address.Linear]

	pathErrors []error
}

func newWalker(logger *log.Logger, rom []byte, opts Options) *walker {
	registry := opts.Registry
	if registry == nil {
		registry = jumptable.Empty()
	}

	return &walker{
		logger:         logger,
		rom:            rom,
		mapping:        opts.Mapping,
		decoder:        m65816.NewDecoder(registry.TrampolineAddresses()...),
		registry:       registry,
		detectTables:   opts.DetectTables,
		store:          chunks.New(len(rom)),
		analysedStarts: set.New[address.Linear](),
		queuedSubs:     set.New[address.Linear](),
		subroutines:    map[address.Linear]*subroutine{},
		returns:        map[address.Linear][]address.Linear{},
		deadEnds:       set.New[address.Linear](),
		forced:         set.New[address.Linear](),
	}
}

// run analyses the code reachable from the entry points. Path errors are collected,
// the returned error aborts the walk.
func (w *walker) run(ctx context.Context, entries []address.Logical) error {
	for _, entry := range entries {
		start, err := w.mapping.ToLinear(entry)
		if err != nil || int(start) >= len(w.rom) {
			w.logger.Warn("Skipping entry point outside of the image", log.Stringer("address", entry))
			continue
		}
		if w.analysedStarts.Contains(start) {
			continue
		}
		w.analysedStarts.Add(start)
		w.queue.pushBack(step{
			kind:      basicBlockStep,
			start:     start,
			entrance:  entry,
			processor: m65816.DefaultProcessor(),
		})
	}

	for steps := 0; ; steps++ {
		s, ok := w.queue.pop()
		if !ok {
			return nil
		}
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("walk interrupted: %w", err)
			}
		}

		var err error
		if s.kind == basicBlockStep {
			err = w.analyseBasicBlock(s)
		} else {
			err = w.analyseSubroutine(s)
		}
		if err != nil {
			return err
		}
	}
}

func (w *walker) analyseBasicBlock(s step) error {
	w.progress++

	limit := len(w.rom)
	found := w.store.Find(s.start)
	switch found.Status {
	case chunks.Found:
		if chunk := w.store.Chunk(found.Index); chunk.Block.Kind == program.DataBlockKind {
			w.deadEnds.Add(s.start)
			w.pathError(&CodeInDataBlockError{Start: w.logical(s.start), Entrance: s.entrance, Data: chunk.Block.Data})
			return nil
		}
		if found.Start != s.start {
			return w.split(found, s)
		}
		return nil
	case chunks.MissingWithNext:
		limit = int(found.NextStart)
	}

	block, decodeErr := w.decodeBlock(s.start, limit, s.processor)
	block.Entrances = append(block.Entrances, s.entrance)
	if len(block.Instructions) == 0 {
		err := &EmptyBlockError{Start: s.start, Entrance: s.entrance, Processor: s.processor, Err: decodeErr}
		w.logBacktrace(s, block)
		return err
	}

	startAddress := w.logical(s.start)
	last := block.Last()
	after := last.End()
	if decodeErr != nil {
		w.logger.Warn("Code block ends with a truncated instruction",
			log.Stringer("block", startAddress), log.Err(decodeErr))
		w.deadEnds.Add(after)
	}

	if !last.ChangesControlFlow() {
		w.commit(s.start, block, after, false)
		return nil
	}

	p := block.FinalProcessor
	nextCovered := false
	var successors []address.Logical
	switch {
	case last.UsesJumpTable:
		// the trampolines set the M and X flags before jumping to the table entry
		p = p.ForceWidths()
		successors, nextCovered = w.jumpTable(last, after)
	case last.IsSubroutineCall():
		successors = w.call(startAddress, last, after, p)
	default:
		successors = last.NextInstructions()
	}

	for _, next := range successors {
		target, err := w.mapping.ToLinear(next)
		if err != nil {
			w.logger.Warn("Wrong address of next target",
				log.Stringer("address", next), log.Stringer("block", startAddress))
			continue
		}
		if int(target) >= len(w.rom) {
			w.commit(s.start, block, after, nextCovered)
			w.pathError(&InvalidAddressInCodeBlockError{Block: s.start, Instruction: last, Target: next})
			return nil
		}

		if target == after {
			nextCovered = true
		}
		block.Exits = append(block.Exits, next)
		w.enqueueBasicBlock(step{kind: basicBlockStep, start: target, processor: p, entrance: startAddress})
	}

	if last.UsesJumpTable || last.IsSubroutineCall() {
		for _, next := range successors {
			target, err := w.mapping.ToLinear(next)
			if err == nil && !w.isData(target) {
				w.enqueueSubroutine(step{kind: subroutineStep, start: target, entrance: last.Address})
			}
		}
	}

	w.commit(s.start, block, after, nextCovered)
	return nil
}

// decodeBlock decodes instructions from start up to the first instruction that
// changes the control flow or the limit.
func (w *walker) decodeBlock(start address.Linear, limit int, p m65816.Processor) (*program.CodeBlock, error) {
	block := &program.CodeBlock{EntryProcessor: p}
	data := w.rom[start:limit]
	offset := start

	var err error
	for len(data) > 0 {
		var addr address.Logical
		addr, err = w.mapping.ToLogical(offset)
		if err != nil {
			break
		}

		var ins m65816.Instruction
		ins, data, err = w.decoder.Decode(data, offset, addr, p)
		if err != nil {
			break
		}

		block.Instructions = append(block.Instructions, ins)
		p = ins.Execute(p)
		offset = ins.End()
		if ins.ChangesControlFlow() {
			break
		}
	}

	block.FinalProcessor = p
	return block, err
}

// commit stores the code block, followed by an unknown chunk if the block can not
// fall through to a decoded successor.
func (w *walker) commit(start address.Linear, block *program.CodeBlock, after address.Linear, nextCovered bool) {
	w.store.AppendCode(start, block)
	if !nextCovered && int(after) < len(w.rom) {
		w.store.Append(after, program.Unknown())
	}
}

// jumpTable returns the targets of the jump table that follows a trampoline call and
// stores the table as data. It returns whether the table was found.
func (w *walker) jumpTable(last m65816.Instruction, after address.Linear) ([]address.Logical, bool) {
	tableAddress := w.logical(after)
	table, ok := w.registry.Find(tableAddress)

	if !ok && w.detectTables {
		trampolineAddress, _ := last.Target()
		trampoline, _ := w.registry.Trampoline(trampolineAddress)
		table, ok = jumptable.Detect(w.rom, w.mapping, tableAddress, trampoline.LongPointers, w.isAnalysed)
		if ok {
			w.logger.Info("Detected jump table",
				log.Stringer("address", tableAddress), log.Int("length", table.Length))
		}
	}
	if !ok {
		w.logger.Warn("Could not find jump table", log.Stringer("address", tableAddress))
		return nil, false
	}

	targets, err := w.registry.Targets(w.rom, w.mapping, table)
	if err != nil {
		w.logger.Warn("Reading jump table failed", log.Stringer("address", tableAddress), log.Err(err))
		return nil, false
	}

	block := program.DataBlock{Begin: after, Size: table.Length, Kind: table.DataKind()}
	if err := w.store.AppendData(block); err != nil {
		w.logger.Warn("Jump table overlaps analysed chunks", log.Stringer("address", tableAddress), log.Err(err))
		return nil, false
	}
	if end := after + address.Linear(table.Length); int(end) < len(w.rom) {
		w.store.Append(end, program.Unknown())
	}
	return targets, true
}

// call registers the return address of a subroutine call and returns the call target
// as the only successor. The code after the call is analysed once the processor
// state at the return of the subroutine is known.
func (w *walker) call(startAddress address.Logical, last m65816.Instruction, after address.Linear,
	p m65816.Processor) []address.Logical {

	following := step{kind: basicBlockStep, start: after, processor: p, entrance: startAddress}

	target, ok := last.CallTarget()
	if !ok {
		w.enqueueBasicBlock(following)
		return nil
	}

	callee, err := w.mapping.ToLinear(target)
	if err != nil {
		// a subroutine in RAM is assumed to not change the processor state
		w.enqueueBasicBlock(following)
		return []address.Logical{target}
	}

	w.registerReturn(callee, after)
	if sub, ok := w.subroutines[callee]; ok && sub.complete && !sub.failed {
		following.processor = sub.final
		w.enqueueBasicBlock(following)
	}
	return []address.Logical{target}
}

func (w *walker) split(found chunks.FindResult, s step) error {
	w.analysedStarts.Add(s.start)

	_, err := w.store.Split(found, s.start, s.entrance)
	if errors.Is(err, chunks.ErrInsideInstruction) {
		w.logger.Warn("Jump into the middle of an instruction",
			log.Stringer("address", w.logical(s.start)), log.Stringer("entrance", s.entrance))
		return nil
	}
	return err
}

func (w *walker) analyseSubroutine(s step) error {
	sub, ok := w.subroutines[s.start]
	if !ok {
		sub = &subroutine{
			analysed:  set.New[address.Linear](),
			remaining: []address.Linear{s.start},
			final:     m65816.DefaultProcessor(),
		}
		if found := w.store.Find(s.start); found.Status == chunks.Found && found.Start == s.start &&
			w.store.Chunk(found.Index).Block.Kind == program.CodeBlockKind {
			sub.final = w.store.Chunk(found.Index).Block.Code.EntryProcessor
		}
		w.subroutines[s.start] = sub
	}
	if sub.complete {
		w.resumeCaller(s)
		return nil
	}

	for len(sub.remaining) > 0 {
		current := sub.remaining[len(sub.remaining)-1]
		sub.remaining = sub.remaining[:len(sub.remaining)-1]

		found := w.store.Find(current)
		if found.Status != chunks.Found {
			if s.suspended && s.suspendedAt == w.progress {
				if w.resolveStall(s, sub, current) {
					sub.remaining = append(sub.remaining, current)
					return nil
				}
				continue
			}

			sub.remaining = append(sub.remaining, current)
			s.suspended = true
			s.suspendedAt = w.progress
			w.queue.pushBack(s)
			return nil
		}

		chunk := w.store.Chunk(found.Index)
		if chunk.Block.Kind != program.CodeBlockKind {
			continue
		}
		sub.blocks = append(sub.blocks, found.Index)
		block := chunk.Block.Code
		last := block.Last()
		if last.UsesJumpTable {
			continue
		}

		after := last.End()
		if len(block.Exits) > 0 && last.IsSubroutineCall() {
			if w.analyseCall(s, sub, block.Exits[0], last, after) {
				return nil
			}
		} else if !last.IsSubroutineReturn() {
			for _, exit := range block.Exits {
				target, err := w.mapping.ToLinear(exit)
				if err != nil || int(target) >= len(w.rom) || sub.analysed.Contains(target) {
					continue
				}
				sub.analysed.Add(target)
				sub.remaining = append(sub.remaining, target)
			}
		}

		if !last.IsSinglePathLeap() && !sub.analysed.Contains(after) {
			sub.analysed.Add(after)
			sub.remaining = append(sub.remaining, after)
		}
	}

	w.completeSubroutine(s, sub)
	return nil
}

// analyseCall handles a call inside of a subroutine. It returns true if the
// subroutine analysis is suspended until the callee is analysed.
func (w *walker) analyseCall(s step, sub *subroutine, target address.Logical, last m65816.Instruction,
	after address.Linear) bool {

	callee, err := w.mapping.ToLinear(target)
	if err != nil {
		return false
	}
	w.registerReturn(callee, after)

	if s.inCallHierarchy(callee) {
		// recursion, continue with the state known so far
		w.enqueueBasicBlock(step{kind: basicBlockStep, start: after, processor: sub.final, entrance: s.entrance})
		return false
	}

	if !w.enqueueSubroutine(s.callee(callee, last.Address)) {
		return false
	}
	sub.analysed.Add(after)
	sub.remaining = append(sub.remaining, after)
	return true
}

// resolveStall handles a dependency of a subroutine that did not appear although
// the walk made no progress since the subroutine was suspended. Dependencies that
// can not appear anymore are dropped, others are analysed with the processor state
// known so far. It returns true if the dependency is analysed.
func (w *walker) resolveStall(s step, sub *subroutine, dependency address.Linear) bool {
	if w.deadEnds.Contains(dependency) || int(dependency) >= len(w.rom) || w.forced.Contains(dependency) {
		w.logger.Debug("Dropping subroutine dependency",
			log.Stringer("subroutine", w.logical(s.start)), log.Stringer("dependency", w.logical(dependency)))
		return false
	}

	w.logger.Debug("Resolving stalled subroutine",
		log.Stringer("subroutine", w.logical(s.start)), log.Stringer("dependency", w.logical(dependency)),
		log.Stringer("processor", sub.final))

	w.forced.Add(dependency)
	w.analysedStarts.Add(dependency)

	s.suspended = false
	w.queue.pushFront(s)
	w.queue.pushFront(step{kind: basicBlockStep, start: dependency, processor: sub.final, entrance: s.entrance})
	return true
}

func (w *walker) completeSubroutine(s step, sub *subroutine) {
	sub.complete = true

	var returning *program.CodeBlock
	for _, index := range sub.blocks {
		block := w.store.Chunk(index).Block.Code
		last := block.Last()
		if last.IsSubroutineReturn() || last.UsesJumpTable {
			returning = block
			break
		}
	}

	if returning == nil {
		sub.failed = true
		for _, ret := range w.returns[s.start] {
			w.deadEnds.Add(ret)
		}
		w.pathError(&SubroutineWithoutReturnError{Subroutine: w.logical(s.start)})
		w.resumeCaller(s)
		return
	}

	sub.final = returning.FinalProcessor
	w.resumeCaller(s)
	for _, ret := range w.returns[s.start] {
		w.enqueueBasicBlock(step{kind: basicBlockStep, start: ret, processor: sub.final, entrance: s.entrance})
	}
}

// resumeCaller continues the analysis of the subroutine that called the analysed one.
func (w *walker) resumeCaller(s step) {
	n := len(s.callers)
	if n == 0 {
		return
	}
	frame := s.callers[n-1]
	w.queue.pushFront(step{
		kind:     subroutineStep,
		start:    frame.start,
		entrance: frame.entrance,
		callers:  s.callers[:n-1],
	})
}

func (w *walker) registerReturn(callee, ret address.Linear) {
	if slices.Contains(w.returns[callee], ret) {
		return
	}
	w.returns[callee] = append(w.returns[callee], ret)
	if sub, ok := w.subroutines[callee]; ok && sub.failed {
		w.deadEnds.Add(ret)
	}
}

func (w *walker) enqueueBasicBlock(s step) bool {
	if w.analysedStarts.Contains(s.start) {
		return false
	}
	w.analysedStarts.Add(s.start)
	w.queue.pushFront(s)
	return true
}

func (w *walker) enqueueSubroutine(s step) bool {
	if w.queuedSubs.Contains(s.start) {
		return false
	}
	w.queuedSubs.Add(s.start)
	w.queue.pushFront(s)
	return true
}

func (w *walker) pathError(err error) {
	w.logger.Warn("Code path analysis failed", log.Err(err))
	w.pathErrors = append(w.pathErrors, err)
}

// isAnalysed returns whether the address is part of a code or data chunk.
func (w *walker) isAnalysed(addr address.Linear) bool {
	return w.store.Find(addr).Status == chunks.Found
}

func (w *walker) isData(addr address.Linear) bool {
	found := w.store.Find(addr)
	return found.Status == chunks.Found && w.store.Chunk(found.Index).Block.Kind == program.DataBlockKind
}

// logical returns the logical address of an offset inside of the image.
func (w *walker) logical(l address.Linear) address.Logical {
	addr, _ := w.mapping.ToLogical(l)
	return addr
}

// logBacktrace logs the failing block and the chain of blocks that lead to it.
func (w *walker) logBacktrace(s step, block *program.CodeBlock) {
	w.logger.Error("Code error backtrace start",
		log.Stringer("block", w.logical(s.start)), log.Stringer("processor", s.processor))
	for _, ins := range block.Instructions {
		w.logger.Error("Backtrace instruction", log.String("instruction", ins.FlagsString()))
	}

	visited := set.New[address.Logical]()
	for entrance := s.entrance; !visited.Contains(entrance); {
		visited.Add(entrance)

		start, err := w.mapping.ToLinear(entrance)
		if err != nil {
			return
		}
		found := w.store.Find(start)
		if found.Status != chunks.Found {
			return
		}
		chunk := w.store.Chunk(found.Index)
		if chunk.Block.Kind != program.CodeBlockKind {
			return
		}

		code := chunk.Block.Code
		w.logger.Error("Next backtrace block",
			log.Stringer("block", w.logical(found.Start)),
			log.Stringer("entrance", entrance),
			log.Stringer("processor", code.EntryProcessor))
		for _, ins := range code.Instructions {
			w.logger.Error("Backtrace instruction", log.String("instruction", ins.FlagsString()))
		}

		if len(code.Entrances) == 0 {
			return
		}
		entrance = code.Entrances[0]
	}
}

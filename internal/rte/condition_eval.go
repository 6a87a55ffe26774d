package rte

import (
	"fmt"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// evalState tracks the three-state visited marker (spec.md §4.2:
// "Recursion or missing conditions yield ERROR; detection is by marking
// nodes 'in progress'").
type evalState int

const (
	notVisited evalState = iota
	inProgress
	done
)

// Evaluator is a depth-first, memoized condition tree walker (spec.md
// §4.2) with cycle-safe traversal and an accumulate-then-check shape.
type Evaluator struct {
	model *projmgr.PackFilter // unused directly; kept for symmetry with Model-scoped construction
	m     *Model

	memo  map[memoKey]projmgr.ConditionResult
	state map[string]evalState
}

type memoKey struct {
	conditionID string
	fingerprint string
}

// NewEvaluator builds an Evaluator bound to one Model. A fresh Evaluator
// should be used per context, since the memo key includes the target
// fingerprint but two different contexts should not share cached
// results for conditions keyed only by id (avoids cross-context leakage,
// mirroring Context's clone-on-select ownership rule).
func NewEvaluator(m *Model) *Evaluator {
	return &Evaluator{m: m, memo: make(map[memoKey]projmgr.ConditionResult), state: make(map[string]evalState)}
}

func fingerprint(t projmgr.TargetFilter) string {
	dev := ""
	if t.Device != nil {
		dev = t.Device.FullName()
	}
	board := ""
	if t.Board != nil {
		board = t.Board.FullName()
	}
	return dev + "|" + t.Pname + "|" + board + "|" + t.Compiler
}

// Eval evaluates the named condition against target, returning the
// lattice result from spec.md §3.
func (e *Evaluator) Eval(conditionID string, target projmgr.TargetFilter) projmgr.ConditionResult {
	if conditionID == "" {
		return projmgr.ResultFulfilled
	}

	key := memoKey{conditionID: conditionID, fingerprint: fingerprint(target)}
	if r, ok := e.memo[key]; ok {
		return r
	}

	switch e.state[conditionID] {
	case inProgress:
		// Cycle detected: spec.md §4.2 "Recursion ... yield ERROR".
		return projmgr.ResultError
	case done:
		// Shouldn't happen (memo would have hit), but guard anyway.
	}

	cond, ok := e.m.Condition(conditionID)
	if !ok {
		// spec.md §4.2: "missing conditions yield ERROR".
		return projmgr.ResultError
	}

	e.state[conditionID] = inProgress
	result := e.evalExprs(cond.Exprs, target)
	e.state[conditionID] = done
	e.memo[key] = result
	return result
}

// evalExprs evaluates a list of sibling expressions as an implicit
// "accept" group — the root of a Condition is an accept over its
// top-level Exprs (spec.md §3).
func (e *Evaluator) evalExprs(exprs []projmgr.Expr, target projmgr.TargetFilter) projmgr.ConditionResult {
	if len(exprs) == 0 {
		return projmgr.ResultFulfilled
	}
	result := projmgr.ResultError
	first := true
	for _, ex := range exprs {
		r := e.evalExpr(ex, target)
		if first {
			result, first = r, false
			continue
		}
		result = projmgr.MaxResult(result, r)
	}
	return result
}

// evalExpr dispatches on expression kind (spec.md §4.2):
//   - require: minimum over children (AND, weakest link)
//   - accept: maximum over children (OR, best option wins)
//   - deny: inverts success to INCOMPATIBLE
func (e *Evaluator) evalExpr(ex projmgr.Expr, target projmgr.TargetFilter) projmgr.ConditionResult {
	if ex.RefID != "" {
		return e.Eval(ex.RefID, target)
	}

	if ex.Predicate != nil && len(ex.Children) == 0 {
		if attrMatches(*ex.Predicate, target) {
			return projmgr.ResultFulfilled
		}
		return leafMismatchResult(ex.Kind)
	}

	switch ex.Kind {
	case projmgr.ExprRequire:
		result := projmgr.ResultIgnored // identity for Min
		first := true
		for _, c := range ex.Children {
			r := e.evalExpr(c, target)
			if first {
				result, first = r, false
				continue
			}
			result = projmgr.MinResult(result, r)
		}
		if first {
			return projmgr.ResultFulfilled
		}
		return result
	case projmgr.ExprAccept:
		return e.evalExprs(ex.Children, target)
	case projmgr.ExprDeny:
		inner := e.evalExprs(ex.Children, target)
		if inner.Buildable() {
			return projmgr.ResultIncompatible
		}
		return projmgr.ResultFulfilled
	default:
		return projmgr.ResultError
	}
}

// leafMismatchResult gives the severity a failed leaf predicate
// contributes: UNAVAILABLE whatever the expression kind, so under an
// accept another branch may still satisfy the group.
func leafMismatchResult(_ projmgr.ExprKind) projmgr.ConditionResult {
	return projmgr.ResultUnavailable
}

// Solve evaluates the dependency result for every selected component in
// ctx, following spec.md §4.2's DependencySolver contract. Unresolved
// dependencies (result below FULFILLED) produce warnings, never hard
// errors — callers decide whether the overall context is buildable via
// Context.Buildable().
func (e *Evaluator) Solve(ctx *projmgr.Context, target projmgr.TargetFilter) {
	for i := range ctx.SelectedComponents {
		sc := &ctx.SelectedComponents[i]
		result := e.Eval(sc.ConditionID, target)
		sc.Result = projmgr.DependencyResult{
			Component: sc.ID,
			Result:    result,
			Aggregates: []string{sc.ID.AggregateID()},
		}
	}
}

// String helps diagnostics format a DependencyResult's chain.
func describe(dr projmgr.DependencyResult) string {
	return fmt.Sprintf("%s -> %s", dr.Component.FullID(), dr.Result)
}

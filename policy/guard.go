package policy

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/xraph/weave"
	"github.com/xraph/weave/step"
	"github.com/xraph/weave/typeinfo"
)

// CheckDuplicateResults rejects an aggregate call that produces the same
// type more than once: downstream steps resolve values by type and could
// not tell them apart.
func CheckDuplicateResults(call *step.Invoke) error {
	if !call.Method.Aggregate {
		return nil
	}

	seen := make(map[reflect.Type]int, len(call.Method.Produces))
	var dups []string
	for _, t := range call.Method.Produces {
		seen[t]++
		if seen[t] == 2 {
			dups = append(dups, typeinfo.Name(t))
		}
	}
	if len(dups) == 0 {
		return nil
	}
	return weave.NewInvalidMethod(call.Owner.Name, call.Method.Name,
		fmt.Sprintf("produces more than one value of type %s", strings.Join(dups, ", ")))
}

// checkShadowing rejects before calls producing the chain's input type,
// which would shadow the message itself.
func checkShadowing(input reflect.Type, pre []step.Step) error {
	if input == nil {
		return nil
	}
	for _, call := range beforeCalls(pre) {
		for _, t := range call.Creates() {
			if t == input {
				return weave.NewInvalidMethod(call.Owner.Name, call.Method.Name,
					fmt.Sprintf("produces the chain input type %s", typeinfo.Name(input)))
			}
		}
	}
	return nil
}

// beforeCalls returns the invocations in pre that run as before calls,
// skipping cleanup.
func beforeCalls(pre []step.Step) []*step.Invoke {
	var calls []*step.Invoke
	for _, s := range pre {
		switch s := s.(type) {
		case *step.Invoke:
			calls = append(calls, s)
		case *step.Protected:
			if call, ok := s.Body.(*step.Invoke); ok {
				calls = append(calls, call)
			}
		}
	}
	return calls
}

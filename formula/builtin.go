package formula

import "sheetsrv/cellvalue"

// builtins are the range-aware functions a formula may call. Each receives
// the flattened list of scalar values contributed by its arguments (a
// range argument contributes every cell it covers).
var builtins = map[string]func([]cellvalue.Value) (cellvalue.Value, error){
	"SUM":   sumFn,
	"AVG":   avgFn,
	"MIN":   minFn,
	"MAX":   maxFn,
	"COUNT": countFn,
}

func sumFn(args []cellvalue.Value) (cellvalue.Value, error) {
	var total int64
	for _, v := range args {
		if v.Kind != cellvalue.KindInt {
			continue // None and String entries don't participate in sums
		}
		total = addSat(total, v.Int)
	}
	return cellvalue.Int(total), nil
}

func avgFn(args []cellvalue.Value) (cellvalue.Value, error) {
	var total int64
	var count int64
	for _, v := range args {
		if v.Kind != cellvalue.KindInt {
			continue
		}
		total = addSat(total, v.Int)
		count++
	}
	if count == 0 {
		return cellvalue.Error("#DIV/0!"), nil
	}
	return cellvalue.Int(total / count), nil
}

func minFn(args []cellvalue.Value) (cellvalue.Value, error) {
	var min int64
	seen := false
	for _, v := range args {
		if v.Kind != cellvalue.KindInt {
			continue
		}
		if !seen || v.Int < min {
			min = v.Int
			seen = true
		}
	}
	if !seen {
		return cellvalue.Error("#N/A"), nil
	}
	return cellvalue.Int(min), nil
}

func maxFn(args []cellvalue.Value) (cellvalue.Value, error) {
	var max int64
	seen := false
	for _, v := range args {
		if v.Kind != cellvalue.KindInt {
			continue
		}
		if !seen || v.Int > max {
			max = v.Int
			seen = true
		}
	}
	if !seen {
		return cellvalue.Error("#N/A"), nil
	}
	return cellvalue.Int(max), nil
}

func countFn(args []cellvalue.Value) (cellvalue.Value, error) {
	var n int64
	for _, v := range args {
		if v.Kind == cellvalue.KindInt {
			n++
		}
	}
	return cellvalue.Int(n), nil
}

package diff

import (
	"fmt"
	"strings"
)

// checkOp verifies that op agrees with which of old and new are empty or equal.
func checkOp(where string, op Op, old, new string) error {
	switch op {
	case OpEqual:
		if old != new {
			return fmt.Errorf("%s: OpEqual requires OldText==NewText", where)
		}
	case OpInsert:
		if old != "" || new == "" {
			return fmt.Errorf(`%s: OpInsert requires OldText=="" and NewText!=""`, where)
		}
	case OpDelete:
		if old == "" || new != "" {
			return fmt.Errorf(`%s: OpDelete requires OldText!="" and NewText==""`, where)
		}
	case OpReplace:
		if old == "" || new == "" {
			return fmt.Errorf(`%s: OpReplace requires OldText!="" and NewText!=""`, where)
		}
	default:
		return fmt.Errorf("%s: unknown op %d", where, op)
	}
	return nil
}

// validate checks the Diff invariants and returns an error on the first violation.
func (d Diff) validate() error {
	var oldConcat, newConcat strings.Builder
	for hi, h := range d.Hunks {
		where := fmt.Sprintf("hunk[%d]", hi)
		if err := checkOp(where, h.Op, h.OldText, h.NewText); err != nil {
			return err
		}
		oldConcat.WriteString(h.OldText)
		newConcat.WriteString(h.NewText)

		if h.Op == OpEqual {
			if h.Lines != nil {
				return fmt.Errorf("%s: OpEqual requires Lines==nil", where)
			}
			continue
		}

		var oldLines, newLines strings.Builder
		for li, ln := range h.Lines {
			if err := ln.validate(fmt.Sprintf("%s.line[%d]", where, li)); err != nil {
				return err
			}
			oldLines.WriteString(ln.OldText)
			newLines.WriteString(ln.NewText)
		}
		if h.OldText != oldLines.String() {
			return fmt.Errorf("%s: lines do not reconstruct OldText", where)
		}
		if h.NewText != newLines.String() {
			return fmt.Errorf("%s: lines do not reconstruct NewText", where)
		}
	}

	if d.OldText != oldConcat.String() {
		return fmt.Errorf("diff: hunks do not reconstruct OldText")
	}
	if d.NewText != newConcat.String() {
		return fmt.Errorf("diff: hunks do not reconstruct NewText")
	}
	return nil
}

func (ln DiffLine) validate(where string) error {
	if err := checkOp(where, ln.Op, ln.OldText, ln.NewText); err != nil {
		return err
	}
	if ln.Op == OpEqual {
		if ln.Spans != nil {
			return fmt.Errorf("%s: OpEqual requires Spans==nil", where)
		}
		return nil
	}

	var sOld, sNew strings.Builder
	for si, sp := range ln.Spans {
		swhere := fmt.Sprintf("%s.span[%d]", where, si)
		if strings.Contains(sp.OldText, defaultEOL) || strings.Contains(sp.NewText, defaultEOL) {
			return fmt.Errorf("%s: span contains EOL", swhere)
		}
		if err := checkOp(swhere, sp.Op, sp.OldText, sp.NewText); err != nil {
			return err
		}
		sOld.WriteString(sp.OldText)
		sNew.WriteString(sp.NewText)
	}

	oldCore, _ := trimEOL(ln.OldText, defaultEOL)
	newCore, _ := trimEOL(ln.NewText, defaultEOL)
	if oldCore != sOld.String() {
		return fmt.Errorf("%s: spans do not reconstruct OldText", where)
	}
	if newCore != sNew.String() {
		return fmt.Errorf("%s: spans do not reconstruct NewText", where)
	}
	return nil
}

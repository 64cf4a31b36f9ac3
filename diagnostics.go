package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/whiteboard/dsl"
	"github.com/ByLCY/whiteboard/layout"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	lineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// reportError 打印致命错误；解析错误附带行号与原文。
func reportError(w io.Writer, err error) {
	var syn *dsl.SyntaxError
	var st *dsl.StructuralError
	switch {
	case errors.As(err, &syn):
		fmt.Fprintf(w, "%s 第 %d 行: %v\n", errorStyle.Render("语法错误"), syn.Line, syn.Err)
		fmt.Fprintf(w, "  %s\n", lineStyle.Render(syn.Text))
	case errors.As(err, &st):
		fmt.Fprintf(w, "%s 第 %d 行: %s\n", errorStyle.Render("结构错误"), st.Line, st.Reason)
		fmt.Fprintf(w, "  %s\n", lineStyle.Render(st.Text))
	default:
		fmt.Fprintf(w, "%s %v\n", errorStyle.Render("错误"), err)
	}
}

// reportWarnings 打印文档校验与渲染阶段的可恢复问题。
func reportWarnings(w io.Writer, validation error, warnings []layout.Warning) int {
	n := 0
	if validation != nil {
		var joined interface{ Unwrap() []error }
		errs := []error{validation}
		if errors.As(validation, &joined) {
			errs = joined.Unwrap()
		}
		for _, e := range errs {
			fmt.Fprintf(w, "%s %v\n", warningStyle.Render("警告"), e)
			n++
		}
	}
	for _, wn := range warnings {
		fmt.Fprintf(w, "%s 第 %d 行 [%s]: %s\n", warningStyle.Render("警告"), wn.Line, wn.Kind, wn.Message)
		n++
	}
	return n
}

func reportDone(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf(format, args...)))
}

// Package style converts the inline markup accepted by the print builtins
// into terminal output.
//
// Markup is a backslash sequence embedded in string text:
//
//	\fg(#rrggbb)  set foreground color
//	\bg(#rrggbb)  set background color
//	\b            bold
//	\cfg \cbg \cb clear foreground, background, bold
//	\c            clear all styling
//	\n \t \\      newline, tab, backslash
//
// [Plain] strips markup for non-terminal output, and [Renderer] renders it
// with lipgloss for a terminal.
package style

// Package ui holds terminal formatting helpers shared by the commands
package ui

import (
	"github.com/pterm/pterm"
)

func Green(a any) string {
	return pterm.Green(a)
}

func Cyan(a any) string {
	return pterm.Cyan(a)
}

func Blue(a any) string {
	return pterm.Blue(a)
}

func Red(a any) string {
	return pterm.Red(a)
}

func Highlight(a any) string {
	return pterm.Bold.Sprint(a)
}

// Rating colours a productivity rating name by its value.
func Rating(value int, name string) string {
	switch {
	case value > 0:
		return Green(name)
	case value < 0:
		return Red(name)
	default:
		return Highlight(name)
	}
}

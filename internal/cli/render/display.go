package render

import (
	gkcolor "github.com/gookit/color"
)

func Red(s string) string {
	return gkcolor.FgRed.Sprint(s)
}

func Gold(s string) string {
	return gkcolor.RGB(181, 181, 91).Sprint(s)
}

func Green(s string) string {
	return gkcolor.FgGreen.Sprint(s)
}

func Grey(s string) string {
	return gkcolor.RGB(138, 138, 138).Sprint(s)
}

func LightBlue(s string) string {
	return gkcolor.HiBlue.Sprint(s)
}

// DisableColor turns every helper above into the identity function.
func DisableColor() {
	gkcolor.Disable()
}

package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`  ____                              `,
	` / ___|  ___  _   _  __ _ _ __ __ _ `,
	` \___ \ / _ \| | | |/ _` + "`" + ` | '__/ _` + "`" + ` |`,
	`  ___) | (_) | |_| | (_| | | | (_| |`,
	` |____/ \___/ \__,_|\__, |_|  \__,_|`,
	`                       |_|          `,
}

// Warm sand to terracotta, one color per line.
var bannerColors = []string{"#fcd34d", "#fbbf24", "#f59e0b", "#ea580c", "#c2410c", "#9a3412"}

// PrintBanner writes the Souqra banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, termenv.String("  launch kits, researched and drafted").Faint(), termenv.String(version).Faint())
	fmt.Fprintln(w)
}

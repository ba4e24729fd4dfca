// FilmBorders — frame photos with film borders.
//
// Usage:
//
//	filmborders [apply] [options] <image>...
//	filmborders borders [list|inspect|export]
//	filmborders schema [--preset <path>]
//	filmborders serve [--port 8080]
//	filmborders init
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/xob0t/FilmBorders/clients/server"
	"github.com/xob0t/FilmBorders/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "apply":
		err = run(os.Args[2:])
	case "borders":
		err = runBorders(os.Args[2:])
	case "schema":
		err = runSchema(os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "serve":
		err = server.RunServe(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		// Default: apply mode (all flags on root).
		err = run(os.Args[1:])
	}
	if err != nil {
		fatal(err)
	}
}

// setupLogging sends warnings, or with verbose every render stage, to stderr.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(logging.Text(os.Stderr, level))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`FilmBorders — frame photos with film borders (Pure Go)

USAGE:
    filmborders [apply] [options] <image>...
    filmborders borders [list | inspect <file>... | export <name> -o <file>]
    filmborders schema [--preset <path>]
    filmborders serve [--port 8080]
    filmborders init [options]

OUTPUT:
    -o, --output <path>       Output file; a directory when several images are given
    --quality <1-100>         JPEG quality
    --preview                 Show the result inline in the terminal
    -j, --jobs <n>            Images rendered in parallel

BORDER:
    --border <name|file>      Builtin (120mm, 35mm) or a PNG with a transparent window
    --border-rotate <deg>     Border rotation, multiple of 90

SIZE:
    --width, --height <px>    Output size; one axis keeps the aspect ratio
    --max-width, --max-height Downscale bound
    --mode <image|border>     Aspect ratio source for a partial size
    --scale <f>               Photo scale inside the frame (default: 1)
    --margin <f>              Background margin, fraction of the canvas

LOOK:
    --crop <t[,r[,b[,l]]]>    Crop the photo; --crop-unit percent|pixels
    --frame-width <t[,r,b,l]> Frame around the photo; --frame-unit percent|pixels
    --frame-color <color>     Frame colour (hex or black/white/gray/clear)
    --background <color>      Canvas colour (default: transparent)
    --rotate <deg>            Photo rotation, multiple of 90
    --color <color>           Render a solid card instead of a photo ('random' allowed)

DOCUMENTS:
    --preset <path>           .fbpreset bundle or preset JSON
    --options <file|json>     Options document layered over the preset
    -v                        Log render stages

EXAMPLES:
    filmborders init
    filmborders -o framed.jpg --border 35mm --margin 0.05 --background white photo.jpg
    filmborders -o out/ --preset contact.fbpreset --max-width 2000 *.jpg
    filmborders --preview --border 120mm --mode border photo.jpg
    filmborders borders inspect my_border.png
    filmborders schema
`)
}

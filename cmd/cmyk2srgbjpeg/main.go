package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prepress/cmyk2srgb/core"
)

var rootCmd = &cobra.Command{
	Use:   "cmyk2srgbjpeg INPUT_IMAGE OUTPUT_IMAGE_NAME_BEFORE_EXTENSION",
	Short: "Detect CMYK images and convert them to sRGB JPEG",
	Long: `cmyk2srgbjpeg first attempts to detect whether INPUT_IMAGE is a CMYK
image.  If it is not, nothing is done.  If it is, the image is converted to
sRGB JPEG using the embedded colour profile if possible, substituting the
configured backstop CMYK profile otherwise, and saved to
OUTPUT_IMAGE_NAME_BEFORE_EXTENSION.<extension>.

Exit codes:
  0  input not detected as CMYK; nothing written
  1  fatal error (bad arguments, open/transform/write failure, path too long)
  2  CMYK, embedded ICC present but unusable; backstop substituted
  3  CMYK, no embedded ICC found; backstop substituted
  4  CMYK, embedded ICC present and used`,
	Args:          cobra.ExactArgs(2),
	RunE:          runConvert,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCode carries the status-code contract out of RunE.
var exitCode int

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(core.StatusFatal.ExitCode())
	}
	os.Exit(exitCode)
}

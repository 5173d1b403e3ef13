package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prepress/cmyk2srgb/core"
)

var identifyCmd = &cobra.Command{
	Use:   "identify INPUT_IMAGE",
	Short: "Inspect image colour space and embedded profile info",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	tool, backend, _, err := setup(cmd)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	defer backend.Shutdown()

	meta, hasProfile, err := tool.Identify(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("File:        %s\n", args[0])
	fmt.Printf("Format:      %s\n", meta.Format)
	fmt.Printf("Dimensions:  %d x %d\n", meta.Width, meta.Height)
	fmt.Printf("Color space: %s\n", meta.ColorSpace)
	fmt.Printf("File size:   %d bytes\n", meta.SizeBytes)
	if hasProfile {
		fmt.Println("ICC profile: embedded")
	} else {
		fmt.Println("ICC profile: none")
	}
	if meta.ColorSpace == core.ColorSpaceCMYK {
		fmt.Println("Would convert: yes (CMYK detected)")
	} else {
		fmt.Println("Would convert: no")
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"pinposter/internal/poster"
)

var (
	titleFlag   string
	image1Flag  string
	image2Flag  string
	outputFlag  string
	captionFlag string
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error("poster generation failed", "err", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "poster",
		Short:         "Compose a 1000x1500 Pinterest poster from two images",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
		Example: `  poster --title "Cozy Cabin Ideas" --image1 cabin1.jpg --image2 cabin2.jpg
  poster --title "Fall Recipes" --image1 https://example.com/soup.jpg --image2 pie.jpg --output fall.jpg`,
	}

	cmd.Flags().StringVar(&titleFlag, "title", "", "Title text for the poster banner")
	cmd.Flags().StringVar(&image1Flag, "image1", "", "Path or URL of the top image")
	cmd.Flags().StringVar(&image2Flag, "image2", "", "Path or URL of the bottom image")
	cmd.Flags().StringVar(&outputFlag, "output", "pinterest_poster.jpg", "Output file path")
	cmd.Flags().StringVar(&captionFlag, "caption", "", "Site caption rendered near the bottom edge")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("image1")
	cmd.MarkFlagRequired("image2")
	cmd.Flags().SortFlags = false

	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	img1, err := loadImage(image1Flag)
	if err != nil {
		return err
	}
	img2, err := loadImage(image2Flag)
	if err != nil {
		return err
	}

	jpegBytes, err := poster.Compose(poster.Request{
		Title:   titleFlag,
		Image1:  img1,
		Image2:  img2,
		Caption: captionFlag,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputFlag, jpegBytes, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputFlag, err)
	}
	log.Info("poster generated", "output", outputFlag, "bytes", len(jpegBytes))
	return nil
}

// loadImage reads image bytes from a local path or an http(s) URL.
func loadImage(source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := httpClient.Get(source)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch %s: status %d", source, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return data, nil
}

package harness

import (
	"fmt"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/rod/lib/utils"
	"github.com/lendwise/landing/models"
)

// takeScreenshots writes every requested image and returns the paths written.
func takeScreenshots(p *rod.Page, shots []Screenshot, outputDir string) ([]string, error) {
	written := make([]string, 0, len(shots))
	for _, shot := range shots {
		path := shot.Path
		if !filepath.IsAbs(path) && outputDir != "" {
			path = filepath.Join(outputDir, path)
		}

		data, err := capture(p, shot)
		if err != nil {
			return written, err
		}
		if err := utils.OutputFile(path, data); err != nil {
			return written, models.NewCheckError(models.ErrCodeScreenshotFailed,
				fmt.Sprintf("write %s", path), err)
		}
		written = append(written, path)
	}
	return written, nil
}

func capture(p *rod.Page, shot Screenshot) ([]byte, error) {
	if shot.Selector != "" {
		el, err := findElement(p, shot.Selector)
		if err != nil {
			return nil, err
		}
		data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
		if err != nil {
			return nil, models.NewCheckError(models.ErrCodeScreenshotFailed,
				fmt.Sprintf("capture %q", shot.Selector), err)
		}
		return data, nil
	}

	data, err := p.Screenshot(shot.FullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, models.NewCheckError(models.ErrCodeScreenshotFailed, "capture page", err)
	}
	return data, nil
}

// Package cli is the terminal host of the cause-list forms. It drives the
// same controller as the web UI and prints result panels as text.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/controller"
	"github.com/courtdesk/causelist/internal/render"
)

// Downloader fetches a generated file from the API.
type Downloader interface {
	DownloadFile(ctx context.Context, filename string, w io.Writer) (int64, error)
	FileURL(filename string) string
}

var menu = []string{
	"Download cause list",
	"Download all courts",
	"Look up a case",
	"Quit",
}

// App runs the interactive menu.
type App struct {
	ctrl    *controller.Controller
	files   Downloader
	prompt  Prompter
	out     io.Writer
	saveDir string
}

// NewApp creates an App. Downloaded PDFs are written to saveDir.
func NewApp(ctrl *controller.Controller, files Downloader, prompt Prompter, out io.Writer, saveDir string) *App {
	return &App{ctrl: ctrl, files: files, prompt: prompt, out: out, saveDir: saveDir}
}

// Run loads the state lists and loops over the menu until the user quits.
func (a *App) Run(ctx context.Context) error {
	if err := a.ctrl.Init(ctx); err != nil {
		a.show(a.ctrl.Snapshot().Main.Result)
	}

	for {
		choice, err := a.prompt.Select(ctx, "What do you want to do?", menu)
		if err != nil {
			if errors.Is(err, ErrAborted) {
				return nil
			}
			return err
		}

		switch choice {
		case 0:
			err = a.download(ctx, false)
		case 1:
			err = a.download(ctx, true)
		case 2:
			err = a.lookup(ctx)
		default:
			return nil
		}
		if errors.Is(err, ErrAborted) {
			continue
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) show(p controller.Panel) {
	if p.Empty() {
		return
	}
	if err := render.Text(a.out, p); err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Msg("Failed to print result")
	}
}

// choose asks for a value at level. It returns false when the level has
// nothing to choose from; the banner explaining why is printed.
func (a *App) choose(ctx context.Context, level controller.Level, message string) (bool, error) {
	view := a.ctrl.Snapshot()
	sel := view.Main.Select(level)
	if !sel.Enabled || len(sel.Options) == 0 {
		a.show(view.Main.Result)
		fmt.Fprintf(a.out, "No %s available.\n", level)
		return false, nil
	}

	labels := make([]string, len(sel.Options))
	for i, o := range sel.Options {
		labels[i] = o.Text
	}
	idx, err := a.prompt.Select(ctx, message, labels)
	if err != nil {
		return false, err
	}
	if err := a.ctrl.Select(ctx, level, sel.Options[idx].Value); err != nil {
		a.show(a.ctrl.Snapshot().Main.Result)
		return false, nil
	}
	return true, nil
}

type step struct {
	level   controller.Level
	message string
}

func (a *App) download(ctx context.Context, all bool) error {
	steps := []step{
		{controller.LevelState, "State"},
		{controller.LevelDistrict, "District"},
		{controller.LevelComplex, "Court complex"},
	}
	if !all {
		steps = append(steps, step{controller.LevelCourt, "Court"})
	}
	for _, s := range steps {
		ok, err := a.choose(ctx, s.level, s.message)
		if err != nil || !ok {
			return err
		}
	}

	date, err := a.prompt.Input(ctx, "Date (YYYY-MM-DD)", a.ctrl.Snapshot().Main.Date, func(s string) error {
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return errors.New(controller.MsgInvalidDate)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := a.ctrl.SetDate(date); err != nil {
		fmt.Fprintln(a.out, controller.MsgInvalidDate)
		return nil
	}

	if all {
		_ = a.ctrl.DownloadAll(ctx)
	} else {
		_ = a.ctrl.Download(ctx)
	}
	form := a.ctrl.Snapshot().Main
	result := form.Result
	a.show(result)

	var files []string
	switch {
	case result.Download != nil:
		files = []string{result.Download.Filename}
	case result.Bulk != nil:
		files = result.Bulk.Files
	}
	if len(files) == 0 {
		return nil
	}

	place := form.Select(controller.LevelComplex).SelectedText()
	if !all {
		place = form.Select(controller.LevelCourt).SelectedText() + ", " + place
	}
	fmt.Fprintf(a.out, "%s (%s, %s)\n", place, form.Select(controller.LevelDistrict).SelectedText(), form.Select(controller.LevelState).SelectedText())
	for _, name := range files {
		fmt.Fprintf(a.out, "Link: %s\n", a.files.FileURL(name))
	}

	save, err := a.prompt.Confirm(ctx, fmt.Sprintf("Save %d file(s) to %s?", len(files), a.saveDir), true)
	if err != nil || !save {
		return err
	}
	for _, name := range files {
		if err := a.save(ctx, name); err != nil {
			fmt.Fprintf(a.out, "Failed to save %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(a.out, "Saved %s\n", filepath.Join(a.saveDir, name))
	}
	return nil
}

// save writes a generated file into saveDir. A partial file is removed.
func (a *App) save(ctx context.Context, name string) error {
	if err := os.MkdirAll(a.saveDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(a.saveDir, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := a.files.DownloadFile(ctx, name, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (a *App) lookup(ctx context.Context) error {
	view := a.ctrl.Snapshot()
	states := view.Lookup.State
	if !states.Enabled || len(states.Options) == 0 {
		fmt.Fprintln(a.out, "No states available.")
		return nil
	}

	labels := make([]string, len(states.Options))
	for i, o := range states.Options {
		labels[i] = o.Text
	}
	idx, err := a.prompt.Select(ctx, "State", labels)
	if err != nil {
		return err
	}
	if err := a.ctrl.SelectLookupState(ctx, states.Options[idx].Value); err != nil {
		a.show(a.ctrl.Snapshot().Lookup.Result)
		return nil
	}

	districts := a.ctrl.Snapshot().Lookup.District
	labels = make([]string, len(districts.Options))
	for i, o := range districts.Options {
		labels[i] = o.Text
	}
	if len(labels) == 0 {
		fmt.Fprintln(a.out, "No districts available.")
		return nil
	}
	idx, err = a.prompt.Select(ctx, "District", labels)
	if err != nil {
		return err
	}
	a.ctrl.SelectLookupDistrict(districts.Options[idx].Value)

	var answers [4]string
	for i, q := range []string{"CNR number (leave empty to use case type/number/year)", "Case type", "Case number", "Case year"} {
		if i > 0 && answers[0] != "" {
			break
		}
		if answers[i], err = a.prompt.Input(ctx, q, "", nil); err != nil {
			return err
		}
	}
	a.ctrl.SetLookupFields(answers[0], answers[1], answers[2], answers[3])

	_ = a.ctrl.Lookup(ctx)
	a.show(a.ctrl.Snapshot().Lookup.Result)
	return nil
}

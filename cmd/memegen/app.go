package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/dimonomid/memegen/catalog"
	"github.com/dimonomid/memegen/clhistory"
	"github.com/dimonomid/memegen/editor"
	"github.com/dimonomid/memegen/export"
	"github.com/dimonomid/memegen/log"
	"github.com/dimonomid/memegen/meme"
	"github.com/dimonomid/memegen/recent"
	"github.com/dimonomid/memegen/render"
	"github.com/dimonomid/memegen/theme"
	"github.com/gdamore/tcell/v2"
	"github.com/juju/errors"
	"github.com/rivo/tview"
)

type memegenApp struct {
	params memegenAppParams

	logger *log.Logger

	// tviewApp is the TUI application. NOTE: once TUI exits, tviewApp is reset
	// to nil.
	tviewApp *tview.Application
	mainView *MainView

	catalog  *catalog.Manager
	loader   render.Loader
	exporter *export.Exporter

	session *editor.Session
	recent  *recent.History
	theme   *theme.Theme

	// cmdLineHistory is the command line history
	cmdLineHistory *clhistory.CLHistory

	// catalogState is the last state received from the catalog manager.
	catalogState catalog.State

	// previewURL is the image which the preview shows or is loading;
	// previewFailed is set if loading it has failed, so that selecting the
	// same template again retries.
	previewURL    string
	previewFailed bool

	// pendingTemplate is the initial template which needs the catalog to be
	// resolved; it's resolved once the catalog is loaded.
	pendingTemplate string

	// numBusy is how many exports are in progress.
	numBusy int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type memegenAppParams struct {
	cfg     *Config
	homeDir string

	initialDoc meme.Document
	// initialTemplate, if not empty, is resolved with catalog.Manager.Find and
	// overrides initialDoc.ImageURL.
	initialTemplate string
	offline         bool

	clipboard        export.Clipboard
	clipboardInitErr error

	logLevel log.LogLevel
}

type cmdWithOpts struct {
	cmd  string
	opts CmdOpts
}

func newMemegenApp(
	params memegenAppParams, cmdLineHistory *clhistory.CLHistory,
) (*memegenApp, error) {
	logger := log.NewLogger(params.logLevel)

	catalogUpdatesCh := make(chan catalog.Update, 16)

	svc, err := newServices(servicesParams{
		cfg:              params.cfg,
		homeDir:          params.homeDir,
		offline:          params.offline,
		clipboard:        params.clipboard,
		catalogUpdatesCh: catalogUpdatesCh,
		logger:           logger,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	recentHistory, err := recent.New(recent.HistoryParams{
		Store:  svc.store,
		Logger: logger,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "loading recent memes")
	}

	th, err := theme.New(theme.ThemeParams{
		Store: svc.store,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "loading theme")
	}

	initialDoc := params.initialDoc
	pendingTemplate := ""
	if params.initialTemplate != "" {
		// URLs and paths are resolved right away, names have to wait for the
		// catalog.
		if t, err := svc.catalog.Find(params.initialTemplate); err == nil {
			initialDoc = initialDoc.WithImageURL(t.URL)
		} else {
			pendingTemplate = params.initialTemplate
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &memegenApp{
		params: params,
		logger: logger.WithNamespaceAppended("app"),

		tviewApp: tview.NewApplication(),

		catalog:  svc.catalog,
		loader:   svc.loader,
		exporter: svc.exporter,

		session: editor.NewSession(editor.SessionParams{
			Initial:    initialDoc,
			HistoryLen: params.cfg.HistorySize,
			Templates:  svc.catalog,
		}),
		recent: recentHistory,
		theme:  th,

		cmdLineHistory: cmdLineHistory,

		catalogState:    svc.catalog.State(),
		pendingTemplate: pendingTemplate,

		ctx:    ctx,
		cancel: cancel,
	}

	cmdCh := make(chan cmdWithOpts, 8)

	app.mainView = NewMainView(&MainViewParams{
		App: app.tviewApp,
		OnCmd: func(cmd string, opts CmdOpts) {
			cmdCh <- cmdWithOpts{
				cmd:  cmd,
				opts: opts,
			}
		},
		OnEdit: app.handleEdit,

		CmdHistory: cmdLineHistory,

		Logger: logger,
	})

	app.tviewApp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if app.mainView.isEditingText() {
			return event
		}

		cmd, ok := shortcutCmd(event)
		if !ok {
			return event
		}

		app.mainView.commitFocusedField()
		app.mainView.params.OnCmd(cmd, CmdOpts{Internal: true})
		return nil
	})

	app.tviewApp.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		app.mainView.screenWidth, app.mainView.screenHeight = screen.Size()
		return false
	})

	app.applyTheme()
	app.applyDocument()

	if params.clipboardInitErr != nil {
		app.printMsg("Clipboard is not available, only :download and :link will work")
	}

	go app.handleCmdLine(cmdCh)
	go app.handleCatalogUpdates(catalogUpdatesCh)

	app.reloadCatalog()

	return app, nil
}

func (app *memegenApp) runTViewApp() error {
	err := app.tviewApp.SetRoot(app.mainView.GetUIPrimitive(), true).Run()

	// Now that TUI app has finished, remember that by resetting it to nil.
	app.tviewApp = nil

	return err
}

func (app *memegenApp) handleCmdLine(cmdCh <-chan cmdWithOpts) {
	for {
		select {
		case cwo := <-cmdCh:
			app.queueUpdateDraw(func() {
				if !cwo.opts.Internal {
					if err := app.cmdLineHistory.Add(cwo.cmd); err != nil {
						app.logger.Errorf("Failed to save command history: %s", err.Error())
					}
				}
				app.handleCmd(cwo.cmd)
			})

		case <-app.ctx.Done():
			return
		}
	}
}

// handleCatalogUpdates applies the catalog states to the UI. Several states
// may arrive in a row (e.g. the cached catalog and then the fetched one), so
// only the last one is applied when there are no more yet.
func (app *memegenApp) handleCatalogUpdates(updatesCh <-chan catalog.Update) {
	var lastState *catalog.State

	for {
		select {
		case upd := <-updatesCh:
			lastState = &upd.State

		default:
			if lastState != nil {
				state := *lastState
				app.queueUpdateDraw(func() {
					app.applyCatalogState(state)
				})
				lastState = nil
			}

			// The same select again, but blocking.
			select {
			case upd := <-updatesCh:
				lastState = &upd.State
			case <-app.ctx.Done():
				return
			}
		}
	}
}

// queueUpdateDraw is like tviewApp.QueueUpdateDraw, but it's a no-op once
// the TUI has finished.
func (app *memegenApp) queueUpdateDraw(f func()) {
	tviewApp := app.tviewApp
	if tviewApp == nil || app.ctx.Err() != nil {
		return
	}

	tviewApp.QueueUpdateDraw(f)
}

func (app *memegenApp) applyCatalogState(state catalog.State) {
	app.catalogState = state

	if !state.IsLoading {
		switch {
		case state.Err != nil && app.params.offline:
			app.printMsg(fmt.Sprintf("Offline mode, using %d cached templates", len(state.AllMemes)))

		case state.Err != nil:
			app.showAdvisory(state.Err)

		case len(state.AllMemes) == 0:
			app.showAdvisory(errors.Trace(catalog.ErrNoTemplatesSelectable))
		}
	}

	if !state.IsLoading && app.pendingTemplate != "" {
		spec := app.pendingTemplate
		app.pendingTemplate = ""

		t, err := app.catalog.Find(spec)
		if err != nil {
			app.printError(capitalizeFirstRune(err.Error()))
		} else {
			app.setTemplate(t)
		}
	}

	// Now that we might know more templates, the name might become known too.
	app.mainView.setTemplateName(app.templateName(app.session.Document().ImageURL))
	app.updateStatus()
}

func (app *memegenApp) reloadCatalog() {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.catalog.Load(app.ctx)
	}()
}

// templateName returns the name of the template with the given image, or the
// image URL itself if it's not from the catalog.
func (app *memegenApp) templateName(imageURL string) string {
	for _, t := range app.catalogState.AllMemes {
		if t.URL == imageURL {
			return t.Name
		}
	}

	return imageURL
}

func (app *memegenApp) handleEdit(field formField, value string) error {
	switch field {
	case formFieldTop:
		app.applyEdit(app.session.SetTopText(value))

	case formFieldBottom:
		app.applyEdit(app.session.SetBottomText(value))

	case formFieldFontSize:
		size, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.Errorf("invalid font size %q", value)
		}
		app.applyEdit(app.session.SetFontSize(size))

	case formFieldColor:
		if err := app.SetTextColor(value); err != nil {
			return errors.Trace(err)
		}

	default:
		return errors.Errorf("unknown field %q", field)
	}

	return nil
}

// applyEdit updates the UI after an edit of the session; if the edit didn't
// change anything, only the form is reverted (e.g. the font size might have
// been clamped to the same value).
func (app *memegenApp) applyEdit(changed bool) {
	if !changed {
		app.mainView.revertForm()
		return
	}

	app.applyDocument()
}

// applyDocument makes the UI reflect the current Document of the session.
func (app *memegenApp) applyDocument() {
	doc := app.session.Document()

	app.mainView.setDocument(doc)
	app.mainView.setTemplateName(app.templateName(doc.ImageURL))
	app.loadPreviewImage(doc.ImageURL)
	app.updateStatus()
}

func (app *memegenApp) setTemplate(t catalog.Template) {
	app.applyEdit(app.session.SetImageURL(t.URL))
	app.printMsg("Template: " + t.Name)
}

// loadPreviewImage starts loading the image for the preview, unless it's
// already shown or being loaded. Results of stale loads are dropped.
func (app *memegenApp) loadPreviewImage(url string) {
	if url == app.previewURL && !app.previewFailed {
		return
	}

	app.previewURL = url
	app.previewFailed = false
	app.mainView.setPreviewLoading()

	resCh := render.LoadAsync(app.ctx, app.loader, url)

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()

		res, ok := <-resCh
		if !ok {
			return
		}

		app.queueUpdateDraw(func() {
			if app.previewURL != url {
				return
			}

			if res.Err != nil {
				app.previewFailed = true
				app.mainView.setPreviewFailed(editor.Advisory(res.Err))
				app.showAdvisory(res.Err)
				return
			}

			app.mainView.setPreviewImage(res.Image)
		})
	}()
}

func (app *memegenApp) updateStatus() {
	pos, total := app.session.HistoryPos()
	left := fmt.Sprintf("History %d/%d", pos, total)

	state := app.catalogState
	switch {
	case state.IsLoading:
		left += " | Loading templates..."
	case state.Err != nil && !app.params.offline:
		left += fmt.Sprintf(" | [red]Templates unavailable[-] (%d cached)", len(state.AllMemes))
	default:
		left += fmt.Sprintf(" | %d templates", len(state.AllMemes))
	}

	if app.numBusy > 0 {
		left += " | Rendering..."
	}

	themeName := themeLight
	if app.theme.IsDark() {
		themeName = themeDark
	}

	right := fmt.Sprintf("%s | F2: menu", themeName)

	app.mainView.setStatus(left, right)
}

func (app *memegenApp) applyTheme() {
	app.mainView.applyPalette(app.theme.Palette())
	app.updateStatus()
}

// runExport runs the export in its own goroutine, since it might have to
// load the image first. On success, the Document is added to the recent
// memes and msg is printed.
func (app *memegenApp) runExport(
	doc meme.Document, f func(ctx context.Context) (msg string, err error),
) {
	app.numBusy++
	app.updateStatus()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()

		msg, err := f(app.ctx)

		app.queueUpdateDraw(func() {
			app.numBusy--
			app.updateStatus()

			if err != nil {
				app.showAdvisory(err)
				return
			}

			app.addRecent(doc)
			app.printMsg(msg)
		})
	}()
}

func (app *memegenApp) download() {
	doc := app.session.Document()
	app.runExport(doc, func(ctx context.Context) (string, error) {
		fname, err := app.exporter.Download(ctx, doc)
		if err != nil {
			return "", errors.Trace(err)
		}

		return "Saved to " + fname, nil
	})
}

// copyImage copies the rendered meme to the clipboard; if the clipboard
// doesn't take the image, the share link is copied instead.
func (app *memegenApp) copyImage() {
	if app.params.clipboardInitErr != nil {
		app.printError("Clipboard is not available: " + app.params.clipboardInitErr.Error())
		return
	}

	doc := app.session.Document()
	app.runExport(doc, func(ctx context.Context) (string, error) {
		err := app.exporter.CopyImage(ctx, doc)
		if err == nil {
			return "Copied the image to clipboard", nil
		}

		if errors.Cause(err) != export.ErrClipboardOrShareFailed {
			return "", errors.Trace(err)
		}

		app.logger.Warnf("Failed to copy image, falling back to link: %s", err.Error())

		link, linkErr := app.exporter.CopyLink(doc)
		if linkErr != nil {
			return "", errors.Trace(err)
		}

		return "Failed to copy the image, copied the link instead: " + link, nil
	})
}

func (app *memegenApp) copyLink() {
	if app.params.clipboardInitErr != nil {
		// Still useful: the link is printed.
		app.printMsg(app.exporter.ShareLink(app.session.Document()))
		return
	}

	doc := app.session.Document()
	link, err := app.exporter.CopyLink(doc)
	if err != nil {
		app.showAdvisory(err)
		return
	}

	app.addRecent(doc)
	app.printMsg("Copied " + link)
}

func (app *memegenApp) addRecent(doc meme.Document) {
	if err := app.recent.Add(doc); err != nil {
		app.logger.Errorf("Failed to save recent meme: %s", err.Error())
	}
}

// showAdvisory logs the error and shows the user-facing message for it.
func (app *memegenApp) showAdvisory(err error) {
	app.logger.Errorf("%s", errors.ErrorStack(err))
	app.mainView.showAdvisory(editor.Advisory(err))
}

func (app *memegenApp) showSearch(query string) {
	sv := NewSearchView(app.mainView, &SearchViewParams{
		State: app.catalogState,
		OnSelect: func(t catalog.Template) {
			app.setTemplate(t)
		},
	})
	sv.Show(query)
}

func (app *memegenApp) showHistory() {
	hv := NewHistoryView(app.mainView, &HistoryViewParams{
		Entries:      app.recent.Items(),
		TemplateName: app.templateName,
		OnSelect: func(doc meme.Document) {
			app.applyEdit(app.session.Replace(doc))
		},
	})
	hv.Show()
}

// printError lets user know that there is an error by printing a simple error
// message over the command line, sort of like in Vim.
// Note that if command line is focused atm, the message will not be printed
// and it's a no-op.
func (app *memegenApp) printError(msg string) {
	app.mainView.printMsg(msg, msgLevelErr)
}

// printMsg prints a FYI kind of message. Also see notes for printError.
func (app *memegenApp) printMsg(msg string) {
	app.mainView.printMsg(msg, msgLevelInfo)
}

// Close stops all the background work; pending exports are canceled.
func (app *memegenApp) Close() {
	app.cancel()
}

func (app *memegenApp) Wait() {
	app.wg.Wait()
}

func defaultCmdHistoryPath(homeDir string) string {
	return filepath.Join(homeDir, ".memegen_history")
}

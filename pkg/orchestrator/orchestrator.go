package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formimport/pkg/compiler"
	"github.com/goliatone/go-formimport/pkg/duplicate"
	"github.com/goliatone/go-formimport/pkg/remote"
	"github.com/goliatone/go-formimport/pkg/repository"
	"github.com/goliatone/go-formimport/pkg/target"
	"github.com/goliatone/go-formimport/pkg/trace"
)

const stage = "import"

// Option customises the importer.
type Option func(*Importer)

// WithDirectory sets the default remote directory for requests that do not
// carry one.
func WithDirectory(directory remote.Directory) Option {
	return func(i *Importer) {
		i.directory = directory
	}
}

// WithRepository sets the default local repository for requests that do not
// carry one.
func WithRepository(repo repository.Repository) Option {
	return func(i *Importer) {
		i.repository = repo
	}
}

// WithCompilers injects a compiler registry. Defaults to
// compiler.NewDefaultRegistry.
func WithCompilers(registry *compiler.Registry) Option {
	return func(i *Importer) {
		if registry != nil {
			i.compilers = registry
		}
	}
}

// WithDetector overrides the duplicate detector, e.g. to run Strict.
func WithDetector(detector duplicate.Detector) Option {
	return func(i *Importer) {
		i.detector = detector
	}
}

// WithEmitter registers a trace emitter for state changes and outcomes.
func WithEmitter(emitter trace.Emitter) Option {
	return func(i *Importer) {
		i.emitter = trace.OrNop(emitter)
	}
}

// WithClock overrides the time source used for ImportedAt.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		if now != nil {
			i.now = now
		}
	}
}

// Importer runs imports. It keeps no per-import state and may be shared.
type Importer struct {
	directory  remote.Directory
	repository repository.Repository
	compilers  *compiler.Registry
	detector   duplicate.Detector
	emitter    trace.Emitter
	now        func() time.Time
}

// New constructs an Importer applying any provided options.
func New(options ...Option) *Importer {
	i := &Importer{
		compilers: compiler.NewDefaultRegistry(),
		detector:  duplicate.New(duplicate.Loose),
		emitter:   trace.Nop,
		now:       time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(i)
	}
	return i
}

// Request describes one import. Directory and Repository override the
// importer defaults when set.
type Request struct {
	RemoteFormID string
	Target       target.Target
	Title        string

	Directory  remote.Directory
	Repository repository.Repository
}

// run tracks one import through the state machine.
type run struct {
	importer *Importer
	ctx      context.Context
	result   Result
}

// Import executes the import sequence. A non-nil error is always an *Error
// and the returned Result then has State == StateFailed.
func (i *Importer) Import(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &run{
		importer: i,
		ctx:      ctx,
		result: Result{
			RemoteFormID: strings.TrimSpace(req.RemoteFormID),
			Target:       req.Target,
			Title:        strings.TrimSpace(req.Title),
		},
	}

	r.enter(StateValidating)
	directory, repo, problems := i.resolve(req)
	problems = append(validateRequest(r.result), problems...)
	if len(problems) > 0 {
		return r.fail(KindValidation, nil, problems...)
	}

	if err := r.enter(StateCheckingLink); err != nil {
		return r.fail(KindCanceled, err)
	}
	link, err := repo.GetLink(ctx, r.result.RemoteFormID, r.result.Target)
	switch {
	case err == nil:
		r.result.Link = &link
		r.result.LocalFormID = link.LocalFormID
		return r.finish(OutcomeAlreadyLinked, link.LocalFormID)
	case !errors.Is(err, repository.ErrNotFound):
		return r.fail(KindRepository, fmt.Errorf("get link: %w", err))
	}

	if err := r.enter(StateFetching); err != nil {
		return r.fail(KindCanceled, err)
	}
	form, err := directory.GetForm(ctx, r.result.RemoteFormID)
	if err != nil {
		return r.fail(KindFetch, err)
	}

	if err := r.enter(StateCompiling); err != nil {
		return r.fail(KindCanceled, err)
	}
	compiled, err := i.compilers.Compile(ctx, r.result.Target, form, r.result.Title)
	if err != nil {
		return r.fail(KindValidation, err)
	}
	r.result.Degraded = compiled.Degraded()

	if err := r.enter(StateCheckingDuplicate); err != nil {
		return r.fail(KindCanceled, err)
	}
	existing, err := repo.ListExisting(ctx, r.result.Target)
	if err != nil {
		return r.fail(KindRepository, fmt.Errorf("list existing forms: %w", err))
	}
	if match, found := i.detector.Find(compiled, existing); found {
		r.result.Match = match
		r.emit(trace.KindDuplicateFound, match.LocalFormID)
		return r.finish(OutcomeDuplicateFound, "")
	}

	if err := r.enter(StateCreating); err != nil {
		return r.fail(KindCanceled, err)
	}
	localID, err := repo.Create(ctx, r.result.Target, compiled)
	if err != nil {
		return r.fail(KindCreate, err)
	}
	r.result.LocalFormID = localID

	// The form exists from here on; a failed link write orphans it.
	newLink := repository.ImportLink{
		RemoteFormID: r.result.RemoteFormID,
		LocalFormID:  localID,
		Target:       r.result.Target,
		ImportedAt:   i.now().UTC(),
	}
	if err := repo.SaveLink(ctx, newLink); err != nil {
		kind := KindRepository
		if errors.Is(err, repository.ErrLinkExists) {
			kind = KindLinkRace
		}
		return r.failOrphan(kind, localID, err)
	}
	r.result.Link = &newLink

	r.enter(StateLinked)
	r.emit(trace.KindLinked, localID)
	return r.finish(OutcomeSuccess, localID)
}

func (i *Importer) resolve(req Request) (remote.Directory, repository.Repository, []string) {
	directory := req.Directory
	if directory == nil {
		directory = i.directory
	}
	repo := req.Repository
	if repo == nil {
		repo = i.repository
	}

	var problems []string
	if directory == nil {
		problems = append(problems, "remote directory is required")
	}
	if repo == nil {
		problems = append(problems, "local repository is required")
	}
	if i.compilers == nil {
		problems = append(problems, "compiler registry is required")
	}
	return directory, repo, problems
}

func validateRequest(result Result) []string {
	var problems []string
	if result.RemoteFormID == "" {
		problems = append(problems, "remote form id is required")
	}
	if result.Title == "" {
		problems = append(problems, "title is required")
	}
	if !result.Target.Valid() {
		problems = append(problems, fmt.Sprintf("target %q is not supported (use A or B)", result.Target))
	}
	return problems
}

// enter records the transition and reports a cancelled context.
func (r *run) enter(state State) error {
	r.result.State = state
	r.result.History = append(r.result.History, state)
	r.emit(trace.KindStateChanged, string(state))
	return r.ctx.Err()
}

func (r *run) finish(outcome Outcome, localID string) (Result, error) {
	r.result.Outcome = outcome
	if localID != "" {
		r.result.LocalFormID = localID
	}
	return r.result, nil
}

func (r *run) fail(kind Kind, err error, messages ...string) (Result, error) {
	return r.failOrphan(kind, "", err, messages...)
}

func (r *run) failOrphan(kind Kind, localID string, err error, messages ...string) (Result, error) {
	failed := &Error{
		Kind:        kind,
		State:       r.result.State,
		Messages:    messages,
		LocalFormID: localID,
		Err:         err,
	}
	r.result.State = StateFailed
	r.result.History = append(r.result.History, StateFailed)
	r.emit(trace.KindFailed, failed.Error())
	return r.result, failed
}

func (r *run) emit(kind, detail string) {
	r.importer.emitter.Emit(r.ctx, trace.Event{
		Stage:  stage,
		Kind:   kind,
		FormID: r.result.RemoteFormID,
		Detail: detail,
	})
}

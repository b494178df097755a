// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package records defines the plain value types returned by every
// repoharvest operation. Records are produced as owned values and
// transferred to the caller; nothing mutable is shared after return.
package records

import "time"

// RepositoryRef identifies a registered repository by its canonical URL
// and, once cloned, the local scratch path holding its working copy.
type RepositoryRef struct {
	URL         string
	ScratchPath string
}

// ClonePhase is the tag of the CloneState union.
type ClonePhase string

const (
	PhaseQueued   ClonePhase = "queued"
	PhaseCloning  ClonePhase = "cloning"
	PhaseCompleted ClonePhase = "completed"
	PhaseFailed   ClonePhase = "failed"
)

// CloneState is a tagged variant: {Queued} | {Cloning, progress} |
// {Completed, scratchPath} | {Failed, errorMessage}.
//
// Go has no native sum type, so the phase-specific fields are simply
// left at their zero value when not applicable. Constructors below are
// the only sanctioned way to build a value; callers should treat the
// struct as read-only.
type CloneState struct {
	Phase        ClonePhase
	Progress     int // valid when Phase == PhaseCloning, 0..100
	ScratchPath  string // valid when Phase == PhaseCompleted
	ErrorMessage string // valid when Phase == PhaseFailed
}

// QueuedState returns the initial CloneState.
func QueuedState() CloneState {
	return CloneState{Phase: PhaseQueued}
}

// CloningState returns a CloneState reporting progress, 0..100.
func CloningState(progress int) CloneState {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return CloneState{Phase: PhaseCloning, Progress: progress}
}

// CompletedState returns a terminal, successful CloneState.
func CompletedState(scratchPath string) CloneState {
	return CloneState{Phase: PhaseCompleted, ScratchPath: scratchPath}
}

// FailedState returns a terminal, failed CloneState.
func FailedState(message string) CloneState {
	return CloneState{Phase: PhaseFailed, ErrorMessage: message}
}

// IsTerminal reports whether the state is Completed or Failed.
func (s CloneState) IsTerminal() bool {
	return s.Phase == PhaseCompleted || s.Phase == PhaseFailed
}

// CloneTaskView is a read-only snapshot of a URL's clone state, as
// returned by the Progress Registry.
type CloneTaskView struct {
	URL   string
	State CloneState
}

// CommitRecord describes a single commit reachable from any local
// branch of a cloned repository.
type CommitRecord struct {
	SHA             string
	RepositoryName  string
	Message         string
	AuthorName      string
	AuthorEmail     string
	AuthorTimestamp int64
	AuthorOffset    int // signed minutes
	CommitterName   string
	CommitterEmail  string
	CommitterTime   int64
	CommitterOffset int // signed minutes
	Additions       int
	Deletions       int
	IsMerge         bool
}

// BlameLineRecord attributes a single line of a file to the commit that
// last touched it.
type BlameLineRecord struct {
	SHA            string
	AuthorName     string
	AuthorEmail    string
	OriginalLineNo int
	FinalLineNo    int
	Content        string
}

// BranchRecord describes one local or remote-tracking ref.
type BranchRecord struct {
	Name             string
	IsRemote         bool
	IsHead           bool
	TipSHA           string
	TipShortMessage  string
	TipAuthorName    string
	TipAuthorEmail   string
	TipAuthorTime    int64
}

// CollaboratorRecord describes one repository collaborator.
type CollaboratorRecord struct {
	Login       string
	UserID      int64
	Name        string // optional, empty when absent
	Email       string // optional, empty when absent
	AvatarURL   string // optional, empty when absent
	Permissions map[string]bool
}

// IssueOrPRState constrains the lifecycle state filters accepted by the
// issue and pull-request fetchers.
type IssueOrPRState string

const (
	StateOpen   IssueOrPRState = "open"
	StateClosed IssueOrPRState = "closed"
	StateAll    IssueOrPRState = "all"
)

// ValidState reports whether s is one of open, closed, all, or empty.
func (s IssueOrPRState) ValidState() bool {
	switch s {
	case StateOpen, StateClosed, StateAll, "":
		return true
	default:
		return false
	}
}

// IssueRecord describes a hosting-service issue. Pull requests are
// returned by the issues endpoint mingled with plain issues; IsPullRequest
// distinguishes them per spec (list filtering is left to the caller).
type IssueRecord struct {
	ID            int64
	Number        int
	Title         string
	State         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ClosedAt      *time.Time
	AuthorLogin   string
	AuthorID      int64
	Labels        []string
	Assignees     []string
	Body          string
	HTMLURL       string
	IsPullRequest bool
}

// PullRequestRecord describes a pull request. Every PR also has an
// IssueRecord at the same numbering space (see spec invariant).
type PullRequestRecord struct {
	ID                 int64
	Number             int
	Title              string
	State              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ClosedAt           *time.Time
	AuthorLogin        string
	AuthorID           int64
	Labels             []string
	Assignees          []string
	Body               string
	HTMLURL            string
	Additions          int
	Deletions          int
	ChangedFiles       int
	Commits            int
	Merged             bool
	IsDraft            bool
	BaseRef            string
	HeadRef            string
	Mergeable          *bool
	MergeableState     string
	RequestedReviewers []string
}

// CodeReviewState enumerates review verdicts.
type CodeReviewState string

const (
	ReviewApproved         CodeReviewState = "APPROVED"
	ReviewChangesRequested CodeReviewState = "CHANGES_REQUESTED"
	ReviewCommented        CodeReviewState = "COMMENTED"
	ReviewDismissed        CodeReviewState = "DISMISSED"
	ReviewPending          CodeReviewState = "PENDING"
)

// CodeReviewRecord describes one review submitted against a pull request.
type CodeReviewRecord struct {
	ID            int64
	PRNumber      int
	ReviewerLogin string
	State         CodeReviewState
	SubmittedAt   time.Time
	Body          string
}

// CommentType tags the hosting-service endpoint a CommentRecord came
// from, since the four comment kinds share no common parent id shape.
type CommentType string

const (
	CommentIssue          CommentType = "issue"
	CommentCommit         CommentType = "commit"
	CommentPullRequest    CommentType = "pull_request"
	CommentReviewComment  CommentType = "review_comment"
)

// CommentRecord describes a single comment, tagged with the parent it
// attaches to. Exactly one of IssueNumber/CommitSHA/PRNumber/ReviewID
// is meaningful, selected by Type.
type CommentRecord struct {
	ID          int64
	Type        CommentType
	AuthorLogin string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Body        string
	HTMLURL     string

	IssueNumber int    // Type == CommentIssue
	CommitSHA   string // Type == CommentCommit
	PRNumber    int    // Type == CommentPullRequest
	ReviewID    int64  // Type == CommentReviewComment
}

// BlameResult is bulk_blame's per-path tagged result: exactly one of
// Lines or Err is meaningful, selected by Err == "".
type BlameResult struct {
	Lines []BlameLineRecord
	Err   string
}

// BranchResult is analyze_branches' per-URL tagged result.
type BranchResult struct {
	Branches []BranchRecord
	Err      string
}

// CollaboratorResult is fetch_collaborators' per-URL tagged result.
type CollaboratorResult struct {
	Collaborators []CollaboratorRecord
	Err           string
}

// IssueResult is fetch_issues' per-URL tagged result.
type IssueResult struct {
	Issues []IssueRecord
	Err    string
}

// PullRequestResult is fetch_pull_requests' per-URL tagged result.
type PullRequestResult struct {
	PullRequests []PullRequestRecord
	Err          string
}

// CodeReviewResult is fetch_code_reviews' per-URL tagged result: the
// nested map keys each pull request's review list by its number.
type CodeReviewResult struct {
	ReviewsByPR map[int][]CodeReviewRecord
	Err         string
}

// CommentResult is fetch_comments' per-URL tagged result.
type CommentResult struct {
	Comments []CommentRecord
	Err      string
}

package collab

import "context"

// IdentityResolver maps a display login (as it appears in a "/~login" URL)
// to the numeric account id the Relational Index keys ownership records by.
// Merging identities across VCS hosts and registry accounts is out of
// scope; only this lookup contract is specified.
type IdentityResolver interface {
	ResolveLogin(ctx context.Context, login string) (githubUserID int64, ok bool, err error)
}

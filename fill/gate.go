package fill

import "github.com/escform/escform/model"

// Identity is what the external auth collaborator reports for the current
// user. A non-nil identity counts as authenticated.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// IdentityProvider exposes the current identity, or nil for anonymous. The
// gate never performs authentication itself; it only decides whether to
// demand it and when to unblock.
type IdentityProvider interface {
	Identity() *Identity
}

// IdentityFunc adapts a plain function to an IdentityProvider.
type IdentityFunc func() *Identity

func (f IdentityFunc) Identity() *Identity {
	return f()
}

// Anonymous is the provider used when no auth collaborator is wired in.
var Anonymous = IdentityFunc(func() *Identity { return nil })

// Gate decides whether the navigation machine may proceed past the entry
// point, based on form policy and current identity.
type Gate struct {
	provider IdentityProvider
}

func NewGate(provider IdentityProvider) Gate {
	if provider == nil {
		provider = Anonymous
	}
	return Gate{provider: provider}
}

// RequiresAuth reports whether the form's policy demands an identity before
// starting: single-submission forms need one to enforce the limit, and
// forms that disallow anonymous filling need one by definition.
func RequiresAuth(form *model.Form) bool {
	return !form.MultipleSubmissions || !form.AllowAnonymous
}

// MayStart reports whether the machine may enter the question sequence now.
func (g Gate) MayStart(form *model.Form) bool {
	if g.provider.Identity() != nil {
		return true
	}
	return form.AllowAnonymous && form.MultipleSubmissions
}

// CurrentIdentity returns the provider's identity, nil when anonymous.
func (g Gate) CurrentIdentity() *Identity {
	return g.provider.Identity()
}

package fill

import (
	"testing"

	"github.com/escform/escform/model"
	"github.com/stretchr/testify/assert"
)

func TestRequiresAuth(t *testing.T) {
	tests := []struct {
		name                string
		multipleSubmissions bool
		allowAnonymous      bool
		want                bool
	}{
		{"open form", true, true, false},
		{"single submission", false, true, true},
		{"no anonymous", true, false, true},
		{"locked down", false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := &model.Form{
				MultipleSubmissions: tt.multipleSubmissions,
				AllowAnonymous:      tt.allowAnonymous,
			}
			assert.Equal(t, tt.want, RequiresAuth(form))
		})
	}
}

func TestGateMayStart(t *testing.T) {
	open := &model.Form{MultipleSubmissions: true, AllowAnonymous: true}
	gated := &model.Form{MultipleSubmissions: false, AllowAnonymous: true}

	anonymous := NewGate(Anonymous)
	assert.True(t, anonymous.MayStart(open))
	assert.False(t, anonymous.MayStart(gated))

	authed := NewGate(IdentityFunc(func() *Identity {
		return &Identity{ID: "u1", Email: "u1@example.com"}
	}))
	assert.True(t, authed.MayStart(open))
	assert.True(t, authed.MayStart(gated))
}

func TestGateNilProvider(t *testing.T) {
	g := NewGate(nil)
	assert.Nil(t, g.CurrentIdentity())
}

package dbusx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerSignalRulesAreScopedToBluez(t *testing.T) {
	for _, rule := range managerSignalRules {
		assert.True(t,
			strings.Contains(rule, "sender='org.bluez'") || strings.Contains(rule, "arg0='org.bluez'"),
			"rule not scoped to org.bluez: %s", rule,
		)
	}
}

func TestNameOwnerChangedRuleScopesArg0(t *testing.T) {
	for _, rule := range managerSignalRules {
		if strings.Contains(rule, "NameOwnerChanged") {
			assert.Contains(t, rule, "arg0='org.bluez'")
			return
		}
	}
	t.Fatal("no NameOwnerChanged rule found")
}

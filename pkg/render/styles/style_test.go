package styles

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lzdw/lzdraw/pkg/diagram"
)

var nodeRoles = []diagram.Role{
	diagram.RoleCloud,
	diagram.RoleActor,
	diagram.RolePermissionSet,
	diagram.RoleDirectory,
	diagram.RoleManagement,
	diagram.RoleControlTower,
	diagram.RoleIdentityCenter,
	diagram.RoleLane,
	diagram.RoleAccount,
	diagram.RoleAccountIcon,
}

func TestNames(t *testing.T) {
	if diff := cmp.Diff([]string{"aws", "lzdw"}, Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if Default().Name() != DefaultTheme {
		t.Errorf("Default().Name() = %q", Default().Name())
	}
	if _, ok := Lookup("neon"); ok {
		t.Error("Lookup(neon) should fail")
	}
}

func TestNodeLabelsArePlainText(t *testing.T) {
	for _, name := range Names() {
		theme, _ := Lookup(name)
		for _, role := range nodeRoles {
			if v, _ := theme.Node(role).Get("html"); v != "0" {
				t.Errorf("%s/%s html = %q, want 0", name, role, v)
			}
		}
	}
}

func TestContainers(t *testing.T) {
	theme := Default()
	for _, role := range []diagram.Role{diagram.RoleCloud, diagram.RoleManagement, diagram.RoleLane, diagram.RoleAccount} {
		if v, _ := theme.Node(role).Get("container"); v != "1" {
			t.Errorf("%s container = %q, want 1", role, v)
		}
	}
	if v, _ := theme.Node(diagram.RoleActor).Get("container"); v != "" {
		t.Errorf("actor container = %q, want unset", v)
	}
}

func TestEdge(t *testing.T) {
	theme := Default()
	if _, ok := theme.Edge(false).Get("dashed"); ok {
		t.Error("solid edge should not be dashed")
	}
	if v, _ := theme.Edge(true).Get("dashed"); v != "1" {
		t.Errorf("dashed edge dashed = %q", v)
	}
	if v, _ := theme.Edge(true).Get("strokeColor"); v != theme.Palette().Ink {
		t.Errorf("edge strokeColor = %q, want %q", v, theme.Palette().Ink)
	}
}

package layout

import (
	"github.com/lzdw/lzdraw/pkg/errors"
)

// Actor is an external principal drawn left of the cloud container.
type Actor struct {
	Label string `toml:"label" json:"label"`
	// Shape is the AWS icon name: "user" or "users".
	Shape string `toml:"shape" json:"shape"`
}

// Config holds every spacing constant of the landing zone layout. All values
// are in diagram units (pixels at 100% zoom).
//
// The resulting structure, top to bottom:
//
//	actors | cloud header band
//	       | permission sets | management band (control tower, identity center)
//	       | directory       | Security lane | Workload lane | Networking lane
type Config struct {
	Margin int `toml:"margin" json:"margin"`

	ActorColumnWidth int `toml:"actor_column_width" json:"actorColumnWidth"`
	ActorSize        int `toml:"actor_size" json:"actorSize"`
	ActorSpacing     int `toml:"actor_spacing" json:"actorSpacing"`

	HeaderHeight int `toml:"header_height" json:"headerHeight"`
	CloudPadding int `toml:"cloud_padding" json:"cloudPadding"`

	PermSetWidth       int `toml:"permission_set_width" json:"permissionSetWidth"`
	PermSetHeight      int `toml:"permission_set_height" json:"permissionSetHeight"`
	PermSetSpacing     int `toml:"permission_set_spacing" json:"permissionSetSpacing"`
	DirectoryLabelRoom int `toml:"directory_label_room" json:"directoryLabelRoom"`
	ColumnGap          int `toml:"column_gap" json:"columnGap"`

	ManagementBandHeight    int `toml:"management_band_height" json:"managementBandHeight"`
	ManagementPaddingBottom int `toml:"management_padding_bottom" json:"managementPaddingBottom"`
	GovernanceIconSize      int `toml:"governance_icon_size" json:"governanceIconSize"`
	GovernanceIconX         int `toml:"governance_icon_x" json:"governanceIconX"`
	GovernanceIconY         int `toml:"governance_icon_y" json:"governanceIconY"`
	GovernanceIconSpacing   int `toml:"governance_icon_spacing" json:"governanceIconSpacing"`
	// HubOffset is how far above the lanes the management-to-OU edges fan out.
	HubOffset int `toml:"hub_offset" json:"hubOffset"`

	LaneWidth         int `toml:"lane_width" json:"laneWidth"`
	LaneGutter        int `toml:"lane_gutter" json:"laneGutter"`
	LaneInset         int `toml:"lane_inset" json:"laneInset"`
	LaneHeaderHeight  int `toml:"lane_header_height" json:"laneHeaderHeight"`
	LanePaddingBottom int `toml:"lane_padding_bottom" json:"lanePaddingBottom"`

	AccountHeight    int `toml:"account_height" json:"accountHeight"`
	AccountGutter    int `toml:"account_gutter" json:"accountGutter"`
	AccountInset     int `toml:"account_inset" json:"accountInset"`
	AccountIconSize  int `toml:"account_icon_size" json:"accountIconSize"`
	AccountIconInset int `toml:"account_icon_inset" json:"accountIconInset"`

	Actors         []Actor  `toml:"actors" json:"actors"`
	PermissionSets []string `toml:"permission_sets" json:"permissionSets"`
	// Directory labels the external identity source. Empty omits it.
	Directory string `toml:"directory" json:"directory"`
}

// DefaultConfig returns the workshop layout.
func DefaultConfig() Config {
	return Config{
		Margin: 20,

		ActorColumnWidth: 140,
		ActorSize:        48,
		ActorSpacing:     160,

		HeaderHeight: 50,
		CloudPadding: 30,

		PermSetWidth:       150,
		PermSetHeight:      60,
		PermSetSpacing:     40,
		DirectoryLabelRoom: 40,
		ColumnGap:          60,

		ManagementBandHeight:    170,
		ManagementPaddingBottom: 20,
		GovernanceIconSize:      48,
		GovernanceIconX:         30,
		GovernanceIconY:         60,
		GovernanceIconSpacing:   110,
		HubOffset:               25,

		LaneWidth:         260,
		LaneGutter:        20,
		LaneInset:         20,
		LaneHeaderHeight:  50,
		LanePaddingBottom: 30,

		AccountHeight:    60,
		AccountGutter:    20,
		AccountInset:     15,
		AccountIconSize:  32,
		AccountIconInset: 12,

		Actors: []Actor{
			{Label: "Administrator/Root", Shape: "user"},
			{Label: "Developers/Testers", Shape: "users"},
		},
		PermissionSets: []string{"Admin Permission Set", "Dev/Tester Permission Set"},
		Directory:      "On-Premises\n/ AWS Cloud AD",
	}
}

// LaneBase is the height of an OU lane with no accounts.
func (c Config) LaneBase() int {
	return c.LaneHeaderHeight + c.LanePaddingBottom
}

// LaneHeight is the height of an OU lane holding n accounts.
func (c Config) LaneHeight(n int) int {
	return c.LaneBase() + n*c.AccountStep()
}

// AccountStep is the vertical distance between consecutive accounts.
func (c Config) AccountStep() int {
	return c.AccountHeight + c.AccountGutter
}

// ManagementWidth is the width of the management-account box.
func (c Config) ManagementWidth() int {
	lanes := len(lanesInOrder)
	return 2*c.LaneInset + lanes*c.LaneWidth + (lanes-1)*c.LaneGutter
}

// Validate rejects configurations that would produce overlapping or
// degenerate geometry.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    int
	}{
		{"actor_size", c.ActorSize},
		{"header_height", c.HeaderHeight},
		{"permission_set_width", c.PermSetWidth},
		{"permission_set_height", c.PermSetHeight},
		{"management_band_height", c.ManagementBandHeight},
		{"governance_icon_size", c.GovernanceIconSize},
		{"lane_width", c.LaneWidth},
		{"lane_header_height", c.LaneHeaderHeight},
		{"account_height", c.AccountHeight},
		{"account_icon_size", c.AccountIconSize},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "layout %s must be positive, got %d", p.name, p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    int
	}{
		{"margin", c.Margin},
		{"cloud_padding", c.CloudPadding},
		{"permission_set_spacing", c.PermSetSpacing},
		{"directory_label_room", c.DirectoryLabelRoom},
		{"column_gap", c.ColumnGap},
		{"management_padding_bottom", c.ManagementPaddingBottom},
		{"governance_icon_x", c.GovernanceIconX},
		{"governance_icon_y", c.GovernanceIconY},
		{"lane_gutter", c.LaneGutter},
		{"lane_inset", c.LaneInset},
		{"lane_padding_bottom", c.LanePaddingBottom},
		{"account_gutter", c.AccountGutter},
		{"account_inset", c.AccountInset},
		{"account_icon_inset", c.AccountIconInset},
	}
	for _, p := range nonNegative {
		if p.v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "layout %s must not be negative, got %d", p.name, p.v)
		}
	}

	switch {
	case c.ActorColumnWidth < c.ActorSize:
		return errors.New(errors.ErrCodeInvalidConfig, "layout actor_column_width must fit actor_size")
	case len(c.Actors) > 1 && c.ActorSpacing < c.ActorSize:
		return errors.New(errors.ErrCodeInvalidConfig, "layout actor_spacing must be at least actor_size")
	case c.GovernanceIconSpacing < c.GovernanceIconSize:
		return errors.New(errors.ErrCodeInvalidConfig, "layout governance_icon_spacing must be at least governance_icon_size")
	case c.GovernanceIconX+c.GovernanceIconSpacing+c.GovernanceIconSize > c.ManagementWidth():
		return errors.New(errors.ErrCodeInvalidConfig, "layout governance icons do not fit the management box")
	case c.GovernanceIconY+c.GovernanceIconSize > c.ManagementBandHeight:
		return errors.New(errors.ErrCodeInvalidConfig, "layout governance icons do not fit the management band")
	case c.HubOffset <= 0 || c.HubOffset >= c.ManagementBandHeight:
		return errors.New(errors.ErrCodeInvalidConfig, "layout hub_offset must lie inside the management band")
	case c.LaneWidth <= 2*c.AccountInset:
		return errors.New(errors.ErrCodeInvalidConfig, "layout lane_width must exceed twice account_inset")
	case c.AccountIconInset+c.AccountIconSize > c.LaneWidth-2*c.AccountInset:
		return errors.New(errors.ErrCodeInvalidConfig, "layout account icon does not fit the account box")
	case c.AccountIconSize > c.AccountHeight:
		return errors.New(errors.ErrCodeInvalidConfig, "layout account_icon_size must not exceed account_height")
	case c.PermSetWidth < c.ActorSize:
		return errors.New(errors.ErrCodeInvalidConfig, "layout permission_set_width must fit the directory icon")
	}

	for i, a := range c.Actors {
		if a.Shape != "user" && a.Shape != "users" {
			return errors.New(errors.ErrCodeInvalidConfig, "layout actors[%d].shape must be user or users, got %q", i, a.Shape)
		}
	}
	return nil
}

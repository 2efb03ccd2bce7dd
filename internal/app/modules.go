package app

import (
	"github.com/specialistvlad/gridvm/internal/registry"
	"github.com/specialistvlad/gridvm/modules/fail"
	"github.com/specialistvlad/gridvm/modules/identity"
	"github.com/specialistvlad/gridvm/modules/scale"
	"github.com/specialistvlad/gridvm/modules/setval"
)

// coreModules is the definitive list of all operator modules compiled
// into the gridvm binary.
var coreModules = []registry.Module{
	&fail.Module{},
	&identity.Module{},
	&scale.Module{},
	&setval.Module{},
}

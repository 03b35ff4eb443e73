package modules

import (
	"github.com/partsdesk/partsdesk/modules/catalog"
	"github.com/partsdesk/partsdesk/modules/core"
	"github.com/partsdesk/partsdesk/pkg/application"
)

// BuiltInModules is the load order. Core comes first so catalog can
// resolve its services.
var BuiltInModules = []application.Module{
	core.NewModule(),
	catalog.NewModule(),
}

func Load(app application.Application) error {
	return application.Load(app, BuiltInModules...)
}

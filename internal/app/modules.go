package app

import (
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/modules/conditional"
	"github.com/vk/flowgrid/modules/delay"
	"github.com/vk/flowgrid/modules/env_vars"
	"github.com/vk/flowgrid/modules/http_request"
	"github.com/vk/flowgrid/modules/llm_chat"
	"github.com/vk/flowgrid/modules/print"
	"github.com/vk/flowgrid/modules/socketio_request"
	"github.com/vk/flowgrid/modules/static_text"
	"github.com/vk/flowgrid/modules/template"
	"github.com/vk/flowgrid/modules/text_transform"
)

// coreModules is the definitive list of all node modules that are compiled
// into the flowgrid binary.
var coreModules = []registry.Module{
	&static_text.Module{},
	&text_transform.Module{},
	&template.Module{},
	&conditional.Module{},
	&http_request.Module{},
	&llm_chat.Module{},
	&socketio_request.Module{},
	&env_vars.Module{},
	&print.Module{},
	&delay.Module{},
}

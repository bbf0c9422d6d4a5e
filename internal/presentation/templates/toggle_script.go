package templates

import (
	"bytes"
	"html/template"

	"github.com/AtRiskMedia/ace-block/internal/domain/block"
)

// The script is generated from a ToggleBinding so the effects it performs
// stay in step with ToggleBinding.Activate.
var toggleScriptTmpl = template.Must(template.New("toggleScript").Parse(
	`{{define "toggleScript"}}<script>
(function () {
    var binding = {{.Binding}};
    var endpoint = {{.Endpoint}};
    var trigger = document.getElementById(binding.triggerId);
    if (!trigger) {
        return;
    }
    trigger.addEventListener(binding.event, function (event) {
        event.preventDefault();
        binding.hidden = !binding.hidden;
        fetch(endpoint, {
            method: "POST",
            credentials: "include",
            headers: {"Content-Type": "application/json"},
            body: JSON.stringify({name: binding.preferenceKey, value: String(binding.hidden)})
        }).catch(function () {});
        var shown = binding.hidden ? binding.staticId : binding.liveId;
        var hidden = binding.hidden ? binding.liveId : binding.staticId;
        document.getElementById(shown).style.display = "block";
        document.getElementById(hidden).style.display = "none";
        trigger.innerText = binding.hidden ? binding.showLiveLabel : binding.showStaticLabel;
    });
})();
</script>{{end}}`,
))

type toggleScriptData struct {
	Binding  block.ToggleBinding
	Endpoint string
}

// RenderToggleScript renders the client side of a toggle binding. Preference
// writes are posted to endpoint without waiting for the response. The
// endpoint may live on another origin than the host page, so the viewer
// cookie is always sent along.
func RenderToggleScript(binding *block.ToggleBinding, endpoint string) string {
	if binding == nil {
		return ""
	}

	var buf bytes.Buffer
	if err := toggleScriptTmpl.ExecuteTemplate(&buf, "toggleScript", toggleScriptData{Binding: *binding, Endpoint: endpoint}); err != nil {
		return "<!-- template error -->"
	}
	return buf.String()
}

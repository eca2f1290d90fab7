/*
Copyright © 2019 the PFR authors.
This file is part of PFR.

PFR is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PFR is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PFR.  If not, see <http://www.gnu.org/licenses/>.
*/

package pfrutil

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/ctessum/gobra"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

// guiAddress is where StartWebServer listens.
const guiAddress = "localhost:7272"

// configHandler loads the configuration file named by the "config" form
// value and responds with the resulting option values as JSON.
func configHandler(w http.ResponseWriter, r *http.Request) {
	file := r.FormValue("config")
	if file == "" {
		http.Error(w, "pfrutil: missing 'config' parameter", http.StatusBadRequest)
		return
	}
	Cfg.Set("config", file)
	if err := setConfig(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	values := make(map[string]interface{}, len(options))
	for _, option := range options {
		values[option.name] = Cfg.Get(option.name)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(values); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// silenceUsage stops cmd and its subcommands from printing usage
// messages on errors.
func silenceUsage(cmd *cobra.Command) {
	cmd.SilenceUsage = true
	for _, c := range cmd.Commands() {
		silenceUsage(c)
	}
}

// StartWebServer serves a browser interface to the command tree at
// guiAddress and opens it in the default browser.
func StartWebServer() {
	if err := setConfig(); err != nil {
		logrus.WithError(err).Warn("pfrutil: ignoring configuration file")
	}
	http.HandleFunc("/setConfig", configHandler)
	silenceUsage(Root)

	page := template.Must(template.New("pfr").Parse(guiPage))
	server := gobra.Server{Root: Root, ServerAddress: guiAddress, HTML: page}
	url := "http://" + guiAddress
	if err := open.Run(url); err != nil {
		logrus.WithField("url", url).Info("pfrutil: open the interface in a web browser")
	}
	logrus.WithField("address", guiAddress).Info("pfrutil: starting interface server")
	server.Start()
}

// guiPage wraps the gobra command forms. Entering a configuration file
// path fills the forms with the values from that file.
const guiPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>PFR</title>
<style>
body { font-family: sans-serif; max-width: 760px; margin: 2em auto; padding: 0 1em; }
div[id^="gobra-"] blockquote { border-left: 2px solid #ccc; margin: .3em; padding-left: 6px; color: #444; font-size: 80%; }
div[id^="gobra-"] input { font-family: monospace; width: 45%; margin-left: .2em; }
input.from-file { background: #eef8ee; }
input.edited { background: #eef0fb; }
input.failed { background: #fbeeee; }
#status { font-size: 85%; color: #555; }
</style>
</head>
<body>
<h1>PFR plug-flow reactor</h1>
<p>Choose a command below. Fields shaded green come from the configuration
file, blue fields were edited here and red marks a configuration file that
could not be read.</p>
<p id="status"></p>
{{.}}
<script>
const fields = Array.from(document.querySelectorAll("[data-name]"));
const status = document.getElementById("status");

function mark(input, cls) {
	input.classList.remove("from-file", "edited", "failed");
	if (cls) input.classList.add(cls);
}

fields.forEach(f => f.children[0].addEventListener("input", () => mark(f.children[0], "edited")));

async function loadConfig(input) {
	const res = await fetch("/setConfig?config=" + encodeURIComponent(input.value));
	if (!res.ok) {
		mark(input, "failed");
		status.textContent = await res.text();
		return;
	}
	mark(input, null);
	status.textContent = "Loaded " + input.value;
	const values = await res.json();
	for (const f of fields) {
		if (!(f.dataset.name in values)) continue;
		const field = f.children[0];
		const v = JSON.stringify(values[f.dataset.name]).replace(/^"+|"+$/g, "");
		if (field !== input && field.value !== v) {
			field.value = v;
			mark(field, "from-file");
		}
	}
}

fields.filter(f => f.dataset.name === "config").forEach(f =>
	f.children[0].addEventListener("change", e => loadConfig(e.target).catch(err => { status.textContent = err; })));
</script>
</body>
</html>`

package shell

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// DefaultMarkers delimit the wrapper in shell and PowerShell scripts
var DefaultMarkers = Markers{
	Start: "# factory-ai-droid-switch Wrapper Start",
	End:   "# factory-ai-droid-switch Wrapper End",
}

// BatchMarkers delimit the wrapper in CMD batch files
var BatchMarkers = Markers{
	Start: "@REM factory-ai-droid-switch Wrapper Start",
	End:   "@REM factory-ai-droid-switch Wrapper End",
}

// Template is a versioned wrapper definition for one script dialect.
// Bump Version whenever Source changes so installed copies are upgraded.
type Template struct {
	Name       string
	Version    int
	Markers    Markers
	LineEnding string
	Source     string
}

// TemplateData is what a wrapper template is rendered with
type TemplateData struct {
	Start   string
	End     string
	Version int
	Command string
	EnvVar  string
	KeyPath string
}

// Render executes the template and returns the block to install
func (t *Template) Render() (Block, error) {
	tmpl, err := template.New(t.Name).Parse(t.Source)
	if err != nil {
		return Block{}, fmt.Errorf("failed to parse %s template: %w", t.Name, err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, TemplateData{
		Start:   t.Markers.Start,
		End:     t.Markers.End,
		Version: t.Version,
		Command: "droid",
		EnvVar:  "FACTORY_API_KEY",
		KeyPath: "api_key",
	})
	if err != nil {
		return Block{}, fmt.Errorf("failed to render %s template: %w", t.Name, err)
	}

	text := strings.TrimRight(buf.String(), "\r\n")
	eol := t.LineEnding
	if eol == "" {
		eol = "\n"
	}
	if eol != "\n" {
		text = strings.ReplaceAll(text, "\n", eol)
	}

	return Block{
		Markers:    t.Markers,
		Version:    t.Version,
		Text:       text,
		LineEnding: eol,
	}, nil
}

// PosixTemplate defines a droid function for bash and zsh that reads the
// key from ~/.factory/config.json on every call.
var PosixTemplate = &Template{
	Name:    "posix",
	Version: 2,
	Markers: DefaultMarkers,
	Source: `{{.Start}}
# Version: {{.Version}}
{{.Command}}() {
    local api_key=""
    local config_file="$HOME/.factory/config.json"
    if [ -f "$config_file" ]; then
        api_key=$(grep -o '"{{.KeyPath}}"[[:space:]]*:[[:space:]]*"[^"]*"' "$config_file" 2>/dev/null | sed 's/.*"{{.KeyPath}}"[[:space:]]*:[[:space:]]*"\([^"]*\)".*/\1/')
    fi
    if [ -n "$api_key" ]; then
        {{.EnvVar}}="$api_key" command {{.Command}} "$@"
    else
        command {{.Command}} "$@"
    fi
}
{{.End}}
`,
}

// PowerShellTemplate defines a droid function for PowerShell profiles. It
// skips wrappers living under .factory when looking up the real binary.
var PowerShellTemplate = &Template{
	Name:    "powershell",
	Version: 6,
	Markers: DefaultMarkers,
	Source: `{{.Start}}
# Version: {{.Version}}
function {{.Command}} {
    $configPath = "$env:USERPROFILE\.factory\config.json"
    if (Test-Path $configPath) {
        try {
            $config = Get-Content $configPath -Raw | ConvertFrom-Json
            if ($config.{{.KeyPath}}) { $env:{{.EnvVar}} = $config.{{.KeyPath}} } else { $env:{{.EnvVar}} = $null }
        } catch { }
    }
    $droidCmd = Get-Command {{.Command}} -All -ErrorAction SilentlyContinue | Where-Object {
        $_.CommandType -eq 'Application' -and
        ($_.Extension -ieq '.exe' -or $_.Extension -ieq '.cmd' -or $_.Extension -ieq '.bat') -and
        $_.Source -notlike "*\.factory\*"
    } | Select-Object -First 1

    if ($droidCmd) { & $droidCmd.Source @args }
    else { Write-Error "{{.Command}} command not found (checked .exe, .cmd, .bat). Please install Factory CLI first." }
}
{{.End}}
`,
}

// BatchTemplate is the whole content of ~/.factory/bin/droid.cmd
var BatchTemplate = &Template{
	Name:       "batch",
	Version:    1,
	Markers:    BatchMarkers,
	LineEnding: "\r\n",
	Source: `{{.Start}}
@REM Version: {{.Version}}
@echo off
setlocal
set "CF=%USERPROFILE%\.factory\config.json"
set "{{.EnvVar}}="
if exist "%CF%" (
    for /f "usebackq delims=" %%k in (` + "`" + `powershell -NoProfile -Command "try{$c=Get-Content '%CF%' -Raw|ConvertFrom-Json;if($c.{{.KeyPath}}){Write-Output $c.{{.KeyPath}}}}catch{}"` + "`" + `) do set "{{.EnvVar}}=%%k"
)
set "DROID_EXE="
for /f "delims=" %%e in ('powershell -NoProfile -Command "$E='.exe','.cmd','.bat';$P=$env:Path-split';';foreach($d in $P){if($d-like'*\.factory\*'){continue};foreach($x in $E){$f=Join-Path $d ('{{.Command}}'+$x);if(Test-Path $f){$f;exit}}}"') do set "DROID_EXE=%%e"
if defined DROID_EXE (
    "%DROID_EXE%" %*
    exit /b %errorlevel%
)
echo {{.Command}} command not found (checked .exe, .cmd, .bat)
exit /b 1
{{.End}}
`,
}

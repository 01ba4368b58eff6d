// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	DocumentNotFoundId
	NoDocumentsFoundId
	FileMapLoadFailedId
	InvalidStrategyId
	WriteFailedId
	WatchFailedId
	ReferenceUnresolvedId
	CheckFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render returns the issue as terminal-styled markdown. stylePath is a
// glamour style name ("dark", "light", "notty") or a path to a JSON style.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

const docsBase = "https://developers.weixin.qq.com/miniprogram/dev/reference/wxs/"

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Print the file that is being used:
~~~
$ wxsinline config path
~~~

- Compare it against the defaults:
~~~
$ wxsinline config show
~~~

- Regenerate a fresh default file (the existing one is kept):
~~~
$ wxsinline config init
~~~

## Valid values:
- ` + "`strategy`" + `: "spans" or "raw-scan"
- ` + "`environment`" + `: "host" or "file-map"
- ` + "`output.mode`" + `: "stdout", "write" or "dir"
- ` + "`output.format`" + `: "text", "json", "yaml" or "toml"`,
	}

	documentNotFoundIssue = &Issue{
		id: DocumentNotFoundId,
		mdMsg: `
# Document not found!

One of the paths given on the command line does not exist.

## Things you can try:
- Check the spelling of the path
- Pass a directory to inline every matching document below it:
~~~
$ wxsinline inline ./components
~~~`,
		docLinks: []HttpLink{docsBase},
	}

	noDocumentsFoundIssue = &Issue{
		id: NoDocumentsFoundId,
		mdMsg: `
# No documents found!

The directory was searched but no document matched the configured patterns.

## Things you can try:
- Check the ` + "`patterns`" + ` and ` + "`ignore`" + ` globs:
~~~
$ wxsinline config dump
~~~

- If ` + "`components_only`" + ` is set, only directories whose ` + "`<name>.json`" + `
  declares ` + "`\"component\": true`" + ` are searched.`,
	}

	fileMapLoadFailedIssue = &Issue{
		id: FileMapLoadFailedId,
		mdMsg: `
# Failed to load the file map!

The file-map environment reads referenced files from a JSON bundle instead of
the host filesystem. The bundle must be a single object of path to content:

~~~json
{
  "/components/card/format.wxs": "module.exports = { ... }"
}
~~~

## Things you can try:
- Point ` + "`--file-map`" + ` (or ` + "`WXSINLINE_FILE_MAP`" + `) at the right file
- Use the host environment instead:
~~~
$ wxsinline inline --env host ./components
~~~`,
	}

	invalidStrategyIssue = &Issue{
		id: InvalidStrategyId,
		mdMsg: `
# Unknown strategy!

- ` + "`spans`" + ` (default) replaces exactly the text the tokenizer recorded for each tag.
- ` + "`raw-scan`" + ` pairs parsed tags with a textual scan of the document. It leaves the
  document unchanged when the two disagree.`,
	}

	writeFailedIssue = &Issue{
		id: WriteFailedId,
		mdMsg: `
# Failed to write a document!

## Things you can try:
- Check that the output directory is writable
- Print the result instead of writing it:
~~~
$ wxsinline inline path/to/index.wxml
~~~`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Watch mode stopped!

The filesystem watcher could not be started or hit a fatal error.

## Things you can try:
- On Linux, raise the inotify watch limit:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~

- Add large generated directories to ` + "`ignore`" + `.`,
		extLinks: []HttpLink{"https://github.com/fsnotify/fsnotify#faq"},
	}

	referenceUnresolvedIssue = &Issue{
		id: ReferenceUnresolvedId,
		mdMsg: `
# Some referenced files could not be read!

Each such tag was still inlined, with an empty body, so the module exists at
runtime but exports nothing.

## Things you can try:
- Check the ` + "`src`" + ` attribute: it is resolved against the directory of the document
- Run with ` + "`--log-level debug`" + ` to see every resolved path`,
		docLinks: []HttpLink{docsBase},
	}

	checkFailedIssue = &Issue{
		id: CheckFailedId,
		mdMsg: `
# Documents are not inlined!

` + "`--check`" + ` found documents that still reference external files.

## Things you can try:
- Rewrite them in place:
~~~
$ wxsinline inline --write .
~~~`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		documentNotFoundIssue.Id():    documentNotFoundIssue,
		noDocumentsFoundIssue.Id():    noDocumentsFoundIssue,
		fileMapLoadFailedIssue.Id():   fileMapLoadFailedIssue,
		invalidStrategyIssue.Id():     invalidStrategyIssue,
		writeFailedIssue.Id():         writeFailedIssue,
		watchFailedIssue.Id():         watchFailedIssue,
		referenceUnresolvedIssue.Id(): referenceUnresolvedIssue,
		checkFailedIssue.Id():         checkFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for v := range maps.Values(issues) {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/haiku/bind"
	"github.com/ardnew/haiku/dom"
)

const testCatalog = `
templates:
  card: div.card>h3{$name;}
  row: li{%self}
  list: ul[data-children-binding=items,data-template=row]
conditionals:
  by-role:
    field: role
    values: {admin: card}
    default: row
`

type commandEnv struct {
	ctx context.Context
	out *bytes.Buffer
}

func newCommandEnv(t *testing.T, record string, catalogs ...string) commandEnv {
	t.Helper()

	out := new(bytes.Buffer)

	ctx := WithOutput(context.Background(), out)

	if record != "" {
		ctx = WithSourceFiles(ctx, []string{writeTemp(t, "record.yaml", record)})
	}

	paths := make([]string, len(catalogs))
	for i, c := range catalogs {
		paths[i] = writeTemp(t, "catalog.yaml", c)
	}

	return commandEnv{ctx: WithCatalogs(ctx, paths), out: out}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name string
		cmd  Expand
		want string
	}{
		{
			name: "expression",
			cmd:  Expand{Expression: "ul>li{$name;}+li{two}", Format: FormatHTML},
			want: "<ul><li>Ada</li><li>two</li></ul>\n",
		},
		{
			name: "template",
			cmd:  Expand{Expression: "card", Template: true, Format: FormatHTML},
			want: "<div class=\"card\"><h3>Ada</h3></div>\n",
		},
		{
			name: "template bound",
			cmd:  Expand{Expression: "list", Template: true, Bind: true, Format: FormatHTML},
			want: "<ul data-children-binding=\"items\" data-template=\"row\"><li>x</li><li>y</li></ul>\n",
		},
		{
			name: "expression bound",
			cmd:  Expand{Expression: "b[data-binding=name]", Bind: true},
			want: "<b data-binding=\"name\">Ada</b>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCommandEnv(t, "name: Ada\nitems: [x, y]\n", testCatalog)

			require.NoError(t, tt.cmd.Run(env.ctx))
			assert.Equal(t, tt.want, env.out.String())
		})
	}
}

func TestExpand_JSON(t *testing.T) {
	env := newCommandEnv(t, "")

	cmd := Expand{Expression: "p#x.a{hi}", Format: FormatJSON, Indent: 2}
	require.NoError(t, cmd.Run(env.ctx))

	var got []dom.Dump
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &got))
	assert.Equal(t, []dom.Dump{{
		Tag:      "p",
		ID:       "x",
		Classes:  []string{"a"},
		Children: []dom.Dump{{Text: "hi"}},
	}}, got)
}

func TestExpand_YAML(t *testing.T) {
	env := newCommandEnv(t, "")

	cmd := Expand{Expression: "p{hi}", Format: FormatYAML, Indent: 2}
	require.NoError(t, cmd.Run(env.ctx))

	var got []dom.Dump
	require.NoError(t, yaml.Unmarshal(env.out.Bytes(), &got))
	assert.Equal(t, []dom.Dump{{Tag: "p", Children: []dom.Dump{{Text: "hi"}}}}, got)
}

func TestExpand_Errors(t *testing.T) {
	env := newCommandEnv(t, "", testCatalog)

	err := (&Expand{Expression: "nope", Template: true}).Run(env.ctx)
	require.ErrorIs(t, err, bind.ErrTemplateNotFound)

	err = (&Expand{Expression: "p", Format: "toml"}).Run(env.ctx)
	require.ErrorIs(t, err, ErrFormat)

	dup := newCommandEnv(t, "", testCatalog, testCatalog)
	err = (&Expand{Expression: "p"}).Run(dup.ctx)
	require.ErrorIs(t, err, bind.ErrDuplicateTemplate)

	missing := WithCatalogs(env.ctx, []string{filepath.Join(t.TempDir(), "absent.yaml")})
	err = (&Expand{Expression: "p"}).Run(missing)
	require.ErrorIs(t, err, bind.ErrCatalog)
}

func TestBind(t *testing.T) {
	env := newCommandEnv(t, "name: Ada\nitems: [x]\n", testCatalog)

	view := writeTemp(t, "view.html",
		`<h1 data-binding="name"></h1><ol data-children-binding="items" data-template="row"></ol>`)

	require.NoError(t, (&Bind{View: view, Format: FormatHTML}).Run(env.ctx))
	assert.Equal(t,
		`<h1 data-binding="name">Ada</h1><ol data-children-binding="items" data-template="row"><li>x</li></ol>`+"\n",
		env.out.String())
}

func TestBind_Document(t *testing.T) {
	env := newCommandEnv(t, "title: Hi\n")

	view := writeTemp(t, "page.html",
		`<!DOCTYPE html><html><head><title data-binding="title"></title></head><body></body></html>`)

	require.NoError(t, (&Bind{View: view}).Run(env.ctx))
	assert.Contains(t, env.out.String(), `<title data-binding="title">Hi</title>`)
}

func TestBind_MissingView(t *testing.T) {
	env := newCommandEnv(t, "")

	err := (&Bind{View: filepath.Join(t.TempDir(), "absent.html")}).Run(env.ctx)
	require.ErrorIs(t, err, ErrReadView)
}

func TestTemplates(t *testing.T) {
	env := newCommandEnv(t, "", testCatalog)

	require.NoError(t, (&Templates{}).Run(env.ctx))
	assert.Equal(t, "card\nlist\nrow\nby-role (conditional)\n", env.out.String())

	env.out.Reset()
	require.NoError(t, (&Templates{Bodies: true}).Run(env.ctx))
	assert.Equal(t,
		"card  div.card>h3{$name;}\n"+
			"list  ul[data-children-binding=items,data-template=row]\n"+
			"row   li{%self}\n"+
			"by-role  ? role -> admin:card *:row\n",
		env.out.String())
}

func TestFmt(t *testing.T) {
	src := writeTemp(t, "view.html", "<ul><li class=\"a\">one</li></ul>")

	env := newCommandEnv(t, "")
	require.NoError(t, (&HTMLFmt{Source: src}).Run(env.ctx))
	assert.Equal(t, "<ul><li class=\"a\">one</li></ul>\n", env.out.String())

	env = newCommandEnv(t, "")
	require.NoError(t, (&YAMLFmt{Source: src, Indent: 2}).Run(env.ctx))

	var got []dom.Dump
	require.NoError(t, yaml.Unmarshal(env.out.Bytes(), &got))
	assert.Equal(t, []dom.Dump{{
		Tag: "ul",
		Children: []dom.Dump{{
			Tag:      "li",
			Classes:  []string{"a"},
			Children: []dom.Dump{{Text: "one"}},
		}},
	}}, got)

	env = newCommandEnv(t, "")
	require.NoError(t, (&JSONFmt{Source: src, Indent: 0}).Run(env.ctx))
	assert.Equal(t,
		`[{"tag":"ul","children":[{"tag":"li","classes":["a"],"children":[{"text":"one"}]}]}]`+"\n",
		env.out.String())
}

type initCLI struct {
	Level string   `default:"info"`
	Data  []string `short:"d"`
	Depth int      `default:"1"`
	Quiet bool

	Init Init `cmd:""`
}

func parseInit(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli,
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
		kong.Vars{ConfigIdentifier: confPath},
	)
	require.NoError(t, err)

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	require.NoError(t, err)

	return WithContext(context.Background(), ktx)
}

func TestInit(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config.yaml")

	ctx := parseInit(t, confPath, "--depth=3", "-d", "a.yaml", "-d", "b.yaml")
	require.NoError(t, (&Init{}).Run(ctx))

	data, err := os.ReadFile(confPath)
	require.NoError(t, err)

	var got struct {
		Config map[string]any `yaml:"config"`
	}
	require.NoError(t, yaml.Unmarshal(data, &got))

	assert.Equal(t, "info", got.Config["level"])
	assert.EqualValues(t, 3, got.Config["depth"])
	assert.Equal(t, []any{"a.yaml", "b.yaml"}, got.Config["data"])
	assert.Equal(t, false, got.Config["quiet"])
	assert.NotContains(t, got.Config, "help")

	err = (&Init{}).Run(ctx)
	require.ErrorIs(t, err, ErrWriteConfig)
	require.ErrorIs(t, err, ErrFileExists)

	require.NoError(t, (&Init{Force: true}).Run(ctx))
}

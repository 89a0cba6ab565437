package evolution

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaevolve/internal/backend"
	"github.com/tordrt/schemaevolve/internal/diff"
	"github.com/tordrt/schemaevolve/internal/mutation"
	"github.com/tordrt/schemaevolve/internal/signature"
	"github.com/tordrt/schemaevolve/internal/testutil"
)

const baseSignature = `
app:
  Anchor:
    fields:
      id: {type: auto_key, primary_key: true}
  TestModel:
    fields:
      id: {type: auto_key, primary_key: true}
      name: {type: char, max_length: 20}
      age: {type: integer}
`

func loadBase(t *testing.T) *signature.Project {
	t.Helper()
	p, err := signature.Decode(strings.NewReader(baseSignature))
	require.NoError(t, err)
	return p
}

func variant(t *testing.T, edit func(m *signature.Model)) *signature.Project {
	t.Helper()
	p := loadBase(t)
	edit(p.Model("app", "TestModel"))
	return p
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

type recordingExecutor struct {
	stmts []string
	err   error
}

func (r *recordingExecutor) ExecDDL(_ context.Context, stmts []string) error {
	r.stmts = append(r.stmts, stmts...)
	return r.err
}

func TestPlanAndVerify(t *testing.T) {
	base := loadBase(t)
	target := variant(t, func(m *signature.Model) {
		m.Fields["email"] = &signature.Field{
			Type:       signature.FieldTypeChar,
			Attributes: signature.Attributes{MaxLength: intPtr(50), Null: boolPtr(true)},
		}
	})

	e := New(backend.NewPostgres(), WithLogger(testutil.NewTestLogger(t)))
	plan, err := e.Plan(base, diff.Compute(base, target).Evolution())
	require.NoError(t, err)

	assert.Equal(t, "postgres", plan.Dialect)
	assert.Equal(t, []string{"app"}, plan.Namespaces())
	require.Len(t, plan.StepsFor("app"), 1)
	assert.Equal(t, []string{`ALTER TABLE "app_testmodel" ADD COLUMN "email" varchar(50) NULL;`}, plan.Statements())
	require.NoError(t, e.Verify(plan, target))

	// The caller's base is untouched.
	assert.NotContains(t, base.Model("app", "TestModel").Fields, "email")
}

func TestVerifyIncomplete(t *testing.T) {
	base := loadBase(t)
	target := variant(t, func(m *signature.Model) {
		delete(m.Fields, "age")
	})

	e := New(backend.NewPostgres())
	plan, err := e.Plan(base, nil)
	require.NoError(t, err)
	assert.True(t, plan.Empty())

	err = e.Verify(plan, target)
	require.ErrorIs(t, err, ErrIncompleteEvolution)
	assert.Contains(t, err.Error(), "Field 'age' has been deleted")
}

func TestPlanStopsOnFirstError(t *testing.T) {
	base := loadBase(t)
	evolution := map[string][]mutation.Mutation{
		"app": {
			&mutation.DeleteField{Model: "TestModel", Field: "age"},
			&mutation.DeleteField{Model: "TestModel", Field: "age"},
		},
	}

	_, err := New(backend.NewPostgres()).Plan(base, evolution)
	require.ErrorIs(t, err, mutation.ErrStaleFieldReference)
	assert.Contains(t, base.Model("app", "TestModel").Fields, "age")
}

func TestExecute(t *testing.T) {
	base := loadBase(t)
	target := variant(t, func(m *signature.Model) {
		delete(m.Fields, "age")
	})
	e := New(backend.NewPostgres(), WithLogger(testutil.NewTestLogger(t)))
	plan, err := e.Plan(base, diff.Compute(base, target).Evolution())
	require.NoError(t, err)

	t.Run("runs every statement", func(t *testing.T) {
		exec := &recordingExecutor{}
		require.NoError(t, e.Execute(context.Background(), exec, plan))
		assert.Equal(t, []string{`ALTER TABLE "app_testmodel" DROP COLUMN "age" CASCADE;`}, exec.stmts)
	})

	t.Run("wraps executor errors", func(t *testing.T) {
		boom := errors.New("boom")
		err := e.Execute(context.Background(), &recordingExecutor{err: boom}, plan)
		require.ErrorIs(t, err, boom)
	})

	t.Run("skips empty plans", func(t *testing.T) {
		exec := &recordingExecutor{}
		require.NoError(t, e.Execute(context.Background(), exec, &Plan{}))
		assert.Empty(t, exec.stmts)
	})
}

func TestParseRenameHint(t *testing.T) {
	tests := []struct {
		in      string
		want    RenameHint
		wantErr bool
	}{
		{in: "app.TestModel.name=full_name", want: RenameHint{FieldRef: FieldRef{"app", "TestModel", "name"}, NewName: "full_name"}},
		{in: "accounts.contrib.auth.User.name=login", want: RenameHint{FieldRef: FieldRef{"accounts.contrib.auth", "User", "name"}, NewName: "login"}},
		{in: "app.TestModel.name", wantErr: true},
		{in: "app.TestModel.name=", wantErr: true},
		{in: "TestModel.name=x", wantErr: true},
		{in: "app..name=x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRenameHint(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestApplyRenames(t *testing.T) {
	base := loadBase(t)
	e := New(backend.NewPostgres(), WithLogger(testutil.NewTestLogger(t)))

	t.Run("plain rename", func(t *testing.T) {
		target := variant(t, func(m *signature.Model) {
			m.Fields["full_name"] = m.Fields["name"]
			delete(m.Fields, "name")
		})
		evolution := diff.Compute(base, target).Evolution()
		require.Len(t, evolution["app"], 2)

		hint, err := ParseRenameHint("app.TestModel.name=full_name")
		require.NoError(t, err)
		renamed, err := ApplyRenames(base, evolution, []RenameHint{hint})
		require.NoError(t, err)

		require.Len(t, renamed["app"], 1)
		assert.Equal(t, "RenameField('TestModel', 'name', 'full_name')", renamed["app"][0].String())
		assert.Len(t, evolution["app"], 2, "input evolution must not change")

		plan, err := e.Plan(base, renamed)
		require.NoError(t, err)
		assert.Equal(t, []string{`ALTER TABLE "app_testmodel" RENAME COLUMN "name" TO "full_name";`}, plan.Statements())
		require.NoError(t, e.Verify(plan, target))
	})

	t.Run("rename keeps explicit column", func(t *testing.T) {
		target := variant(t, func(m *signature.Model) {
			f := m.Fields["age"].Clone()
			f.DBColumn = strPtr("age")
			m.Fields["years"] = f
			delete(m.Fields, "age")
		})
		renamed, err := ApplyRenames(base, diff.Compute(base, target).Evolution(),
			[]RenameHint{{FieldRef: FieldRef{"app", "TestModel", "age"}, NewName: "years"}})
		require.NoError(t, err)

		plan, err := e.Plan(base, renamed)
		require.NoError(t, err)
		assert.Empty(t, plan.Statements())
		require.NoError(t, e.Verify(plan, target))
	})

	t.Run("rename with attribute change", func(t *testing.T) {
		target := variant(t, func(m *signature.Model) {
			f := m.Fields["name"].Clone()
			f.Null = boolPtr(true)
			m.Fields["full_name"] = f
			delete(m.Fields, "name")
		})
		renamed, err := ApplyRenames(base, diff.Compute(base, target).Evolution(),
			[]RenameHint{{FieldRef: FieldRef{"app", "TestModel", "name"}, NewName: "full_name"}})
		require.NoError(t, err)
		require.Len(t, renamed["app"], 2)
		assert.IsType(t, &mutation.RenameField{}, renamed["app"][0])
		assert.IsType(t, &mutation.ChangeField{}, renamed["app"][1])

		plan, err := e.Plan(base, renamed)
		require.NoError(t, err)
		assert.Equal(t, []string{
			`ALTER TABLE "app_testmodel" RENAME COLUMN "name" TO "full_name";`,
			`ALTER TABLE "app_testmodel" ALTER COLUMN "full_name" DROP NOT NULL;`,
		}, plan.Statements())
		require.NoError(t, e.Verify(plan, target))
	})

	t.Run("hint without matching pair", func(t *testing.T) {
		_, err := ApplyRenames(base, map[string][]mutation.Mutation{},
			[]RenameHint{{FieldRef: FieldRef{"app", "TestModel", "name"}, NewName: "full_name"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "app.TestModel.name=full_name")
	})
}

func TestInitials(t *testing.T) {
	base := loadBase(t)
	target := variant(t, func(m *signature.Model) {
		m.Fields["code"] = &signature.Field{Type: signature.FieldTypeInteger}
		m.Fields["age"].Null = boolPtr(true)
	})
	evolution := diff.Compute(base, target).Evolution()

	ref := FieldRef{Namespace: "app", Model: "TestModel", Field: "code"}
	assert.Equal(t, []FieldRef{ref}, Pending(evolution))

	assert.Equal(t, 1, ApplyInitials(evolution, map[FieldRef]any{ref: 7}))
	assert.Empty(t, Pending(evolution))

	plan, err := New(backend.NewPostgres()).Plan(base, evolution)
	require.NoError(t, err)
	assert.Contains(t, plan.Statements(), `ALTER TABLE "app_testmodel" ADD COLUMN "code" integer NOT NULL DEFAULT 7;`)
	assert.Contains(t, plan.Statements(), `ALTER TABLE "app_testmodel" ALTER COLUMN "code" DROP DEFAULT;`)
}

func intPtr(i int) *int { return &i }

func TestParseInitial(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{in: "app.TestModel.code=7", want: 7},
		{in: "app.TestModel.flag=true", want: true},
		{in: "app.TestModel.name=anonymous", want: "anonymous"},
		{in: "app.TestModel.name='007'", want: "007"},
		{in: "app.TestModel.name=", want: ""},
		{in: "app.TestModel.tags=[a, b]", want: "[a, b]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ref, value, err := ParseInitial(tt.in)
			require.NoError(t, err)
			assert.Equal(t, "TestModel", ref.Model)
			assert.Equal(t, tt.want, value)
		})
	}

	_, _, err := ParseInitial("app.TestModel.code")
	require.Error(t, err)
}

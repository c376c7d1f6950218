package declaration_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/taskline/internal/declaration"
	"github.com/tyemirov/taskline/internal/targets"
)

func TestDefaultDeclaresLocalPipeline(testInstance *testing.T) {
	registry, loadError := declaration.Default()
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, "local", registry.DefaultTargetName())
	require.Equal(testInstance, []string{"local", "dependencies-lock", "code-format", "lint"}, registry.Names())

	plan, resolveError := registry.Resolve("local")
	require.NoError(testInstance, resolveError)

	commandLines := make([]string, 0, 4)
	planNames := make([]string, 0, len(plan))
	for _, target := range plan {
		planNames = append(planNames, target.Name)
		for _, step := range target.Steps {
			commandLines = append(commandLines, step.String())
		}
	}
	require.Equal(testInstance, []string{"dependencies-lock", "code-format", "lint", "local"}, planNames)
	require.Equal(testInstance,
		[]string{"poetry lock --no-update", "ruff format .", "ruff check --fix .", "ruff check ."},
		commandLines,
	)

	localTarget, exists := registry.Lookup("local")
	require.True(testInstance, exists)
	require.Empty(testInstance, localTarget.Steps)
	require.NotEmpty(testInstance, localTarget.Description)
}

func TestDecodeRejectsInvalidDocuments(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		document             string
		expectedMessage      string
		expectDeclarationErr bool
		expectCoreErr        bool
	}{
		{
			name:                 "empty_document",
			document:             "",
			expectedMessage:      "no targets declared",
			expectDeclarationErr: true,
		},
		{
			name:                 "unknown_field",
			document:             "targets:\n  - name: lint\n    command: ruff\n",
			expectedMessage:      "command",
			expectDeclarationErr: true,
		},
		{
			name:                 "empty_step",
			document:             "targets:\n  - name: lint\n    steps:\n      - []\n",
			expectedMessage:      `target "lint" step 1 has no command`,
			expectDeclarationErr: true,
		},
		{
			name:            "duplicate_target",
			document:        "targets:\n  - name: lint\n  - name: lint\n",
			expectedMessage: `target "lint" declared multiple times`,
			expectCoreErr:   true,
		},
		{
			name:            "unknown_prerequisite",
			document:        "targets:\n  - name: local\n    prerequisites: [lint]\n",
			expectedMessage: `target "local" depends on unknown target "lint"`,
			expectCoreErr:   true,
		},
		{
			name:            "cycle",
			document:        "targets:\n  - name: a\n    prerequisites: [b]\n  - name: b\n    prerequisites: [a]\n",
			expectedMessage: "a -> b -> a",
			expectCoreErr:   true,
		},
		{
			name:            "unknown_default",
			document:        "default: release\ntargets:\n  - name: lint\n",
			expectedMessage: `unknown target "release"`,
			expectCoreErr:   true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			registry, decodeError := declaration.Decode(strings.NewReader(testCase.document))
			require.Nil(testInstance, registry)
			require.Error(testInstance, decodeError)
			require.Contains(testInstance, decodeError.Error(), testCase.expectedMessage)
			require.True(testInstance, declaration.IsDeclarationError(decodeError))
			if testCase.expectDeclarationErr {
				require.ErrorIs(testInstance, decodeError, declaration.ErrInvalidDeclaration)
			}
			if testCase.expectCoreErr {
				require.True(testInstance, targets.IsConfigurationError(decodeError))
			}
		})
	}
}

func TestDecodeFallsBackToFirstDeclaredTarget(testInstance *testing.T) {
	document := "targets:\n  - name: lint\n    steps:\n      - [ruff, check, .]\n  - name: format\n    steps:\n      - [ruff, format, .]\n"

	registry, decodeError := declaration.Decode(strings.NewReader(document))
	require.NoError(testInstance, decodeError)
	require.Equal(testInstance, "lint", registry.DefaultTargetName())
}

func TestEmbeddedDocumentReturnsCopy(testInstance *testing.T) {
	first := declaration.EmbeddedDocument()
	require.NotEmpty(testInstance, first)
	first[0] = '#'
	require.NotEqual(testInstance, first[0], declaration.EmbeddedDocument()[0])
}

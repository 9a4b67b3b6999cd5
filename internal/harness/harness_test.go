package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderunr/judge/internal/entry"
	"github.com/coderunr/judge/internal/jsonval"
	"github.com/coderunr/judge/internal/types"
)

func args(t *testing.T, raw string) []jsonval.Value {
	t.Helper()
	out, err := jsonval.Arguments([]byte(raw))
	require.NoError(t, err)
	return out
}

func render(t *testing.T, lang types.Language, src string, in Input) *Program {
	t.Helper()
	candidates, err := entry.Resolve(lang, src)
	require.NoError(t, err)

	in.Source = src
	in.Candidates = candidates
	in.Candidate, err = entry.Select(candidates, len(in.Arguments))
	require.NoError(t, err)

	tmpl, err := For(lang)
	require.NoError(t, err)
	prog, err := tmpl.Render(in)
	require.NoError(t, err)
	return prog
}

func TestForUnsupported(t *testing.T) {
	_, err := For(types.Language("ruby"))
	require.Error(t, err)
	assert.Equal(t, types.KindUnsupportedLanguage, types.KindOf(err))
}

func TestRenderJavaScript(t *testing.T) {
	src := "function helper(x) { return x; }\nfunction solve(a, b) { return a + b; }\n"
	prog := render(t, types.LanguageJavaScript, src, Input{Arguments: args(t, `[1, 2]`)})

	assert.Equal(t, "solution.js", prog.SourceFile)
	assert.Empty(t, prog.Artifact)
	assert.True(t, prog.Envelope)
	assert.Contains(t, prog.Source, src)
	assert.Contains(t, prog.Source, "const args = [1,2];")
	assert.Contains(t, prog.Source, `typeof solve === "function" ? solve : null,`)
	assert.Less(t,
		strings.Index(prog.Source, `typeof solve ===`),
		strings.Index(prog.Source, `typeof helper ===`))
	assert.Contains(t, prog.Source, `"RESULT_START"`)
	assert.Contains(t, prog.Source, "__isPlainObject(args[0]) && fn.length !== 1")
}

func TestRenderPython(t *testing.T) {
	src := "from __future__ import annotations\n\ndef solve(nums):\n    return nums\n"
	prog := render(t, types.LanguagePython, src, Input{Arguments: args(t, `[{"a": 1, "b": [true, null]}]`)})

	assert.Equal(t, "solution.py", prog.SourceFile)
	assert.True(t, prog.Envelope)
	assert.Equal(t, `[{"a":1,"b":[true,null]}]`, prog.Files["input.json"])
	assert.Equal(t, 0, strings.Index(prog.Source, "from __future__ import annotations\n"))
	assert.Contains(t, prog.Source, `__ENTRY_CANDIDATES = ["solve"]`)
	assert.Contains(t, prog.Source, "__ENTRY_RECEIVER = None")
	assert.Contains(t, prog.Source, `open("input.json", "r")`)
}

func TestRenderPythonSolutionClass(t *testing.T) {
	src := "class Solution:\n    def twoSum(self, nums, target):\n        return [0, 1]\n"
	prog := render(t, types.LanguagePython, src, Input{Arguments: args(t, `[[2, 7], 9]`)})

	assert.Contains(t, prog.Source, `__ENTRY_RECEIVER = "Solution"`)
	assert.Contains(t, prog.Source, `__ENTRY_CANDIDATES = ["twoSum"]`)
}

func TestRenderCpp(t *testing.T) {
	src := "vector<int> twoSum(vector<int>& nums, int target) { return {0, 1}; }\n"
	prog := render(t, types.LanguageCPP, src, Input{Arguments: args(t, `[[2, 7, 11, 15], 9]`)})

	assert.Equal(t, "solution.cpp", prog.SourceFile)
	assert.Equal(t, "solution", prog.Artifact)
	assert.False(t, prog.Envelope)
	assert.Contains(t, prog.Source, "std::vector<int> arg0 = std::vector<int>{2, 7, 11, 15};")
	assert.Contains(t, prog.Source, "int arg1 = 9;")
	assert.Contains(t, prog.Source, "auto judge_result = twoSum(arg0, arg1);")
	assert.Contains(t, prog.Source, "namespace judge_runtime")
}

func TestRenderCppSolutionClass(t *testing.T) {
	src := "class Solution {\npublic:\n    int add(int a, int b) { return a + b; }\n};\n"
	prog := render(t, types.LanguageCPP, src, Input{Arguments: args(t, `[1, 2]`)})

	assert.Contains(t, prog.Source, "auto judge_result = Solution().add(arg0, arg1);")
}

func TestRenderCppVoid(t *testing.T) {
	src := "void touch(int x) {}\n"
	prog := render(t, types.LanguageCPP, src, Input{Arguments: args(t, `[1]`)})

	assert.Contains(t, prog.Source, "touch(arg0);")
	assert.Contains(t, prog.Source, `cout << "RESULT_STARTnullRESULT_END";`)
	assert.NotContains(t, prog.Source, "judge_result")
}

func TestRenderCppOwnMain(t *testing.T) {
	src := "int helper(int x) { return x; }\nint main() { return 0; }\n"
	prog := render(t, types.LanguageCPP, src, Input{})

	assert.NotContains(t, prog.Source, "judge_runtime")
	assert.Contains(t, prog.Source, src)
}

func TestRenderC(t *testing.T) {
	src := "int* twoSum(int* nums, int numsSize, int target) { return 0; }\n"
	expected := jsonval.MustParse(`[0, 1]`)
	prog := render(t, types.LanguageC, src, Input{
		Arguments: args(t, `[[2, 7, 11, 15], 9]`),
		Expected:  &expected,
	})

	assert.Equal(t, "solution.c", prog.SourceFile)
	assert.Equal(t, "solution", prog.Artifact)
	assert.Contains(t, prog.Source, "int arg0[] = {2, 7, 11, 15};")
	assert.Contains(t, prog.Source, "int arg0_len = 4;")
	assert.Contains(t, prog.Source, "int* judge_result = twoSum(arg0, arg0_len, arg1);")
	assert.Contains(t, prog.Source, "int judge_len = 2;")
	assert.Contains(t, prog.Source, `printf("%lld", (long long)judge_result[i]);`)
}

func TestRenderCPointerLengthFallback(t *testing.T) {
	src := "int* dup(int* a, int n) { return a; }\n"
	prog := render(t, types.LanguageC, src, Input{Arguments: args(t, `[[1, 2, 3]]`)})

	assert.Contains(t, prog.Source, "int judge_len = arg0_len;")
}

func TestRenderCRejectsNestedArrays(t *testing.T) {
	src := "int sum(int* a, int n) { return 0; }\n"
	candidates, err := entry.Resolve(types.LanguageC, src)
	require.NoError(t, err)

	_, err = C{}.Render(Input{
		Source:    src,
		Candidate: candidates[0],
		Arguments: args(t, `[[[1], [2]]]`),
	})
	require.Error(t, err)
	assert.Equal(t, types.KindUnsupportedInputShape, types.KindOf(err))
}

func TestRenderJavaScriptClassMethods(t *testing.T) {
	src := "class Solution {\n  twoSum(nums, target) { return [0, 1]; }\n  static twice(x) { return 2 * x; }\n}\n"
	prog := render(t, types.LanguageJavaScript, src, Input{Arguments: args(t, `[[2, 7], 9]`)})

	tests := []struct {
		name string
		want string
	}{
		{"instance method", `Solution.prototype.twoSum.bind(new Solution())`},
		{"static method", `Solution.twice.bind(Solution)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, prog.Source, tt.want)
		})
	}
	assert.Less(t,
		strings.Index(prog.Source, "Solution.prototype.twoSum"),
		strings.Index(prog.Source, "Solution.twice.bind"))
}

func TestRenderJava(t *testing.T) {
	src := "import java.util.stream.*;\n\nclass Solution {\n    public int[] twoSum(int[] nums, int target) { return new int[]{0, 1}; }\n}\n"
	prog := render(t, types.LanguageJava, src, Input{Arguments: args(t, `[[2, 7], 9]`)})

	assert.Equal(t, "Solution.java", prog.SourceFile)
	assert.Equal(t, "__Runner", prog.Artifact)
	assert.Contains(t, prog.Source, "import java.util.*;\nimport java.io.*;\nimport java.math.*;\nimport java.util.stream.*;\n")
	assert.Contains(t, prog.Source, `Class.forName("Solution")`)
	assert.Contains(t, prog.Source, "Object[] rawArgs = new Object[]{new Object[]{2, 7}, 9};")
}

func TestRenderJavaPublicClass(t *testing.T) {
	src := "package demo;\npublic class Main {\n    public static int solve(int x) { return x; }\n}\n"
	prog := render(t, types.LanguageJava, src, Input{Arguments: args(t, `[3]`)})

	assert.Equal(t, "Main.java", prog.SourceFile)
	assert.NotContains(t, prog.Source, "package demo;")
	assert.Contains(t, prog.Source, `Class.forName("Main")`)
}

func TestRenderJavaBareMethods(t *testing.T) {
	src := "int solve(int a, int b) { return a + b; }\n"
	prog := render(t, types.LanguageJava, src, Input{Arguments: args(t, `[1, 2]`)})

	assert.Equal(t, "Solution.java", prog.SourceFile)
	assert.Contains(t, prog.Source, "class Solution {\nint solve(int a, int b)")
	assert.Contains(t, prog.Source, `Class.forName("Solution")`)
}

func TestRenderJavaPassesEntryName(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "resolved method",
			src:  "class Solution {\n    public int[] twoSum(int[] nums, int target) { return null; }\n    private int index(int[] nums, int v) { return 0; }\n}\n",
			want: `pickMethod(target.getDeclaredMethods(), rawArgs.length, "twoSum")`,
		},
		{
			name: "solve wins",
			src:  "class Solution {\n    int helper(int a) { return a; }\n    int solve(int a) { return a; }\n}\n",
			want: `pickMethod(target.getDeclaredMethods(), rawArgs.length, "solve")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := render(t, types.LanguageJava, tt.src, Input{Arguments: args(t, `[[1, 2], 3]`)})
			assert.Contains(t, prog.Source, tt.want)
			assert.Contains(t, prog.Source, "isPrivate(mods)")
		})
	}
}

func TestCResultShape(t *testing.T) {
	tests := []struct {
		returnType string
		shape      string
		element    string
	}{
		{"void", "void", ""},
		{"int", "integer", ""},
		{"unsigned long", "integer", ""},
		{"long long", "integer", ""},
		{"size_t", "integer", ""},
		{"bool", "bool", ""},
		{"_Bool", "bool", ""},
		{"double", "float", ""},
		{"float", "float", ""},
		{"Score", "float", ""},
		{"char*", "string", ""},
		{"const char *", "string", ""},
		{"char**", "array", "string"},
		{"int*", "array", "integer"},
		{"double *", "array", "float"},
		{"bool*", "array", "bool"},
		{"void*", "array", "opaque"},
		{"int**", "array", "opaque"},
	}

	for _, tt := range tests {
		t.Run(tt.returnType, func(t *testing.T) {
			shape, element := cResultShape(tt.returnType)
			assert.Equal(t, tt.shape, shape)
			assert.Equal(t, tt.element, element)
		})
	}
}

func TestSplitFutureImports(t *testing.T) {
	futures, body := splitFutureImports("import os\nfrom __future__ import annotations\nx = 1")
	assert.Equal(t, "from __future__ import annotations\n", futures)
	assert.Equal(t, "import os\nx = 1", body)

	futures, body = splitFutureImports("x = 1")
	assert.Empty(t, futures)
	assert.Equal(t, "x = 1", body)
}

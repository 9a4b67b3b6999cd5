package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderunr/judge/internal/types"
)

func TestResolveJavaScript(t *testing.T) {
	src := `// function commented(x) {}
const helper = (x) => x * 2;
function twoSum(nums, target) { function inner() {} return []; }
let arrow = async x => x;
var str = "function fake() {}";
const tpl = ` + "`function alsoFake() { ${1} }`" + `;
async function solve(a) { return a; }
function main() {}
`
	candidates, err := Resolve(types.LanguageJavaScript, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"solve", "helper", "twoSum", "arrow"}, Names(candidates))
}

func TestResolveJavaScriptClassMethods(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		want     []string
		receiver string
		static   []bool
	}{
		{
			name:     "leetcode class",
			src:      "class Solution {\n  constructor() { this.n = 0; }\n  get size() { return this.n; }\n  twoSum(nums, target) { if (nums) { return [0, 1]; } }\n  static helper(x) { return x; }\n}\n",
			want:     []string{"twoSum", "helper"},
			receiver: "Solution",
			static:   []bool{false, true},
		},
		{
			name:     "free function listed first",
			src:      "class Box {\n  async open(x) { return x; }\n}\nfunction twoSum(a, b) { return [a, b]; }\n",
			want:     []string{"twoSum", "open"},
			receiver: "",
			static:   []bool{false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := Resolve(types.LanguageJavaScript, tt.src)
			require.NoError(t, err)
			require.Equal(t, tt.want, Names(candidates))
			assert.Equal(t, tt.receiver, candidates[0].Receiver)
			for i, static := range tt.static {
				assert.Equal(t, static, candidates[i].Static, candidates[i].Name)
			}
		})
	}
}

func TestResolvePython(t *testing.T) {
	src := `import math

def helper(x):
    return x

"""
def fake():
    pass
"""

async def solve(nums):
    def inner():
        pass
    return nums

class Solution:
    def twoSum(self, nums, target):
        return []
`
	candidates, err := Resolve(types.LanguagePython, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"solve", "helper"}, Names(candidates))
	assert.Empty(t, candidates[0].Receiver)
}

func TestResolvePythonSolutionClass(t *testing.T) {
	src := `class Solution:
    def __init__(self):
        self.memo = {}

    def twoSum(self, nums, target):
        return []
`
	candidates, err := Resolve(types.LanguagePython, src)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "twoSum", candidates[0].Name)
	assert.Equal(t, "Solution", candidates[0].Receiver)
}

func TestResolveCpp(t *testing.T) {
	src := `#include <vector>
#include <unordered_map>
using namespace std;

/* int commented(int x) { return x; } */
static int helper(int x) { return x; }

struct Point { int x; int y; };

vector<int> twoSum(vector<int>& nums, int target) {
    unordered_map<int, int> seen;
    for (int i = 0; i < (int)nums.size(); i++) {
        if (seen.count(target - nums[i])) return {seen[target - nums[i]], i};
        seen[nums[i]] = i;
    }
    return {};
}
`
	candidates, err := Resolve(types.LanguageCPP, src)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "helper", candidates[0].Name)
	assert.True(t, candidates[0].Static)
	assert.Equal(t, "int", candidates[0].ReturnType)

	two := candidates[1]
	assert.Equal(t, "twoSum", two.Name)
	assert.Equal(t, "vector<int>", two.ReturnType)
	assert.Equal(t, []Parameter{
		{DeclaredType: "vector<int>&", Name: "nums"},
		{DeclaredType: "int", Name: "target"},
	}, two.Parameters)

	selected, err := Select(candidates, 2)
	require.NoError(t, err)
	assert.Equal(t, "twoSum", selected.Name)
}

func TestResolveCppSolutionClass(t *testing.T) {
	src := `class Solution {
public:
    vector<int> twoSum(vector<int>& nums, int target) {
        return {};
    }
};
`
	candidates, err := Resolve(types.LanguageCPP, src)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "twoSum", candidates[0].Name)
	assert.Equal(t, "Solution", candidates[0].Receiver)
}

func TestResolveC(t *testing.T) {
	src := `#include <stdio.h>
#define MAX(a, b) ((a) > (b) ? (a) : (b))

int sum(int arr[], int n) {
    int total = 0;
    for (int i = 0; i < n; i++) total += arr[i];
    return total;
}

const char *greet(void) { return "hi"; }
`
	candidates, err := Resolve(types.LanguageC, src)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, []Parameter{
		{DeclaredType: "int*", Name: "arr"},
		{DeclaredType: "int", Name: "n"},
	}, candidates[0].Parameters)
	assert.Equal(t, "const char*", candidates[1].ReturnType)
	assert.Empty(t, candidates[1].Parameters)
}

func TestResolveJava(t *testing.T) {
	src := `import java.util.*;

class Solution {
    private int calls;

    public Solution() {}

    public int[] twoSum(int[] nums, int target) {
        return new int[]{0, 1};
    }

    private static int helper(final int x) { return x; }

    public static void main(String[] args) {}
}
`
	candidates, err := Resolve(types.LanguageJava, src)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "twoSum", candidates[0].Name)
	assert.Equal(t, "int[]", candidates[0].ReturnType)
	assert.False(t, candidates[0].Static)
	assert.Equal(t, "Solution", candidates[0].Receiver)
	assert.Equal(t, []Parameter{
		{DeclaredType: "int[]", Name: "nums"},
		{DeclaredType: "int", Name: "target"},
	}, candidates[0].Parameters)

	assert.Equal(t, "helper", candidates[1].Name)
	assert.True(t, candidates[1].Static)
}

func TestResolveJavaPrivateMethodsLast(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   []string
		picked string
	}{
		{
			name:   "private helper declared first",
			src:    "class Solution {\n    private int[] pair(int[] a, int t) { return a; }\n    public int[] twoSum(int[] a, int t) { return a; }\n}\n",
			want:   []string{"twoSum", "pair"},
			picked: "twoSum",
		},
		{
			name:   "package-private methods keep order",
			src:    "class Solution {\n    int b(int x) { return x; }\n    int a(int x) { return x; }\n}\n",
			want:   []string{"b", "a"},
			picked: "b",
		},
		{
			name:   "only private methods",
			src:    "class Solution {\n    private int only(int x) { return x; }\n}\n",
			want:   []string{"only"},
			picked: "only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := Resolve(types.LanguageJava, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Names(candidates))

			c, err := Select(candidates, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.picked, c.Name)
		})
	}
}

func TestResolveJavaBareMethods(t *testing.T) {
	src := `static int sum(int... xs) {
    int total = 0;
    for (int x : xs) total += x;
    return total;
}
`
	candidates, err := Resolve(types.LanguageJava, src)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "sum", c.Name)
	assert.True(t, c.VarArgs)
	assert.Empty(t, c.Receiver)
	assert.Equal(t, []Parameter{{DeclaredType: "int[]", Name: "xs"}}, c.Parameters)
}

func TestResolveErrors(t *testing.T) {
	_, err := Resolve(types.LanguageC, "int x = 5;\n")
	assert.Equal(t, types.KindNoEntryPointFound, types.KindOf(err))
	assert.ErrorIs(t, err, types.ErrNoEntryPointFound)

	_, err = Resolve(types.LanguageJavaScript, "console.log(1);\n")
	assert.Equal(t, types.KindNoEntryPointFound, types.KindOf(err))

	_, err = Resolve(types.Language("ruby"), "def x; end")
	assert.Equal(t, types.KindUnsupportedLanguage, types.KindOf(err))
}

func TestSelect(t *testing.T) {
	typed := func(name string, arity int) Candidate {
		c := Candidate{Name: name, Language: types.LanguageCPP}
		for i := 0; i < arity; i++ {
			c.Parameters = append(c.Parameters, Parameter{DeclaredType: "int"})
		}
		return c
	}

	tests := []struct {
		name       string
		candidates []Candidate
		argc       []int
		want       string
	}{
		{"solve wins", []Candidate{typed("f", 2), typed("solve", 5)}, []int{2}, "solve"},
		{"closest arity", []Candidate{typed("f", 1), typed("g", 3)}, []int{3}, "g"},
		{"earliest on tie", []Candidate{typed("f", 2), typed("g", 2)}, []int{2}, "f"},
		{"any of several counts", []Candidate{typed("f", 1), typed("g", 3)}, []int{2, 3}, "g"},
		{"untyped keeps order", []Candidate{
			{Name: "a", Language: types.LanguageJavaScript},
			{Name: "b", Language: types.LanguageJavaScript},
		}, []int{1}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.candidates, tt.argc...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}

	_, err := Select(nil, 1)
	assert.Equal(t, types.KindNoEntryPointFound, types.KindOf(err))
}

func TestSelectVarArgs(t *testing.T) {
	c := Candidate{
		Name:       "sum",
		Language:   types.LanguageJava,
		VarArgs:    true,
		Parameters: []Parameter{{DeclaredType: "int"}, {DeclaredType: "int[]"}},
	}
	assert.Equal(t, 0, c.distance(5))
	assert.Equal(t, 0, c.distance(1))
	assert.Equal(t, 1, c.distance(0))
}

func TestHasMain(t *testing.T) {
	assert.True(t, HasMain(types.LanguageC, "#include <stdio.h>\nint main(void) { printf(\"42\"); return 0; }\n"))
	assert.True(t, HasMain(types.LanguageCPP, "int main() {\n  return 0;\n}\n"))
	assert.False(t, HasMain(types.LanguageC, "int add(int a, int b) { return a + b; }\n// int main() {}\n"))
	assert.False(t, HasMain(types.LanguageJava, "class Solution { public static void main(String[] a) {} }"))
}

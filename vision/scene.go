package vision

import "strings"

// 场景分类
const (
	SceneCloseUp       = "close-up"
	SceneMedium        = "medium"
	SceneLong          = "long"
	SceneUncategorized = "uncategorized"
)

var sceneRules = []struct {
	scene  string
	labels []string
}{
	{SceneCloseUp, []string{"close-up", "macro"}},
	{SceneMedium, []string{"portrait", "person", "face"}},
	{SceneLong, []string{"landscape", "sky", "mountain", "sea"}},
}

// ClassifyScene 根据标签推断景别，规则按顺序匹配
func ClassifyScene(labels []string) string {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}
	for _, rule := range sceneRules {
		for _, l := range rule.labels {
			if _, ok := set[l]; ok {
				return rule.scene
			}
		}
	}
	return SceneUncategorized
}

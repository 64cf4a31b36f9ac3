package fonts

import "testing"

func TestLoadBuiltin(t *testing.T) {
	for _, name := range []string{Regular, "embed:bold", "Mono"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("加载 %s 失败: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s 字体数据为空", name)
		}
	}
	if _, err := Load("Inter-Regular.ttf"); err == nil {
		t.Fatalf("未知字体应返回错误")
	}
}

func TestFaceMetrics(t *testing.T) {
	face, err := Face(Regular, 20)
	if err != nil {
		t.Fatalf("创建字体面失败: %v", err)
	}
	defer face.Close()
	if h := face.Metrics().Height.Ceil(); h < 15 || h > 40 {
		t.Fatalf("20px 字体行高异常: %d", h)
	}
}

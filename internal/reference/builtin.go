package reference

import "nutri-go/internal/nutri"

// FallbackName is the food record used for names missing from the table.
const FallbackName = "未知食物"

func food(name string, kcal, protein, carbs, fat, sodium float64, ingredients ...string) nutri.ReferenceFood {
	return nutri.ReferenceFood{
		Name: name,
		Nutrients: nutri.Nutrients{
			Calories: kcal,
			Protein:  protein,
			Carbs:    carbs,
			Fat:      fat,
			Sodium:   sodium,
		},
		Ingredients: ingredients,
	}
}

// builtinFoods lists per-100g reference values. Table order matters: demo
// seeding draws from the first ten entries.
func builtinFoods() []nutri.ReferenceFood {
	return []nutri.ReferenceFood{
		// lunch boxes and staples
		food("雞腿便當", 850, 35, 100, 30, 1200, "雞腿", "白飯", "高麗菜", "滷蛋"),
		food("排骨便當", 900, 30, 105, 35, 1300, "豬排", "白飯", "青江菜", "豆干"),
		food("牛肉麵", 700, 40, 80, 25, 2500, "麵條", "牛肉", "青江菜", "高湯"),
		food("魯肉飯", 450, 12, 60, 18, 800, "白飯", "豬肉燥", "醃蘿蔔"),
		food("水餃(10顆)", 550, 20, 65, 22, 900, "麵皮", "豬肉", "高麗菜", "醬油"),
		food("蛋炒飯", 650, 15, 85, 25, 950, "白飯", "雞蛋", "蔥花", "油"),

		// western
		food("漢堡套餐", 900, 25, 95, 45, 1100, "漢堡麵包", "牛肉排", "薯條", "可樂"),
		food("生菜沙拉", 150, 5, 10, 8, 150, "美生菜", "番茄", "小黃瓜", "和風醬"),
		food("義大利麵", 600, 20, 80, 22, 800, "義大利麵", "番茄醬", "絞肉"),
		food("總匯三明治", 400, 15, 45, 18, 700, "吐司", "火腿", "煎蛋", "小黃瓜", "美乃滋"),

		// breakfast and snacks
		food("燕麥粥", 300, 10, 50, 5, 50, "燕麥", "牛奶", "堅果"),
		food("茶葉蛋", 75, 7, 1, 5, 200, "雞蛋", "茶葉滷汁"),
		food("地瓜", 130, 2, 30, 0.5, 20, "地瓜"),
		food("香蕉", 90, 1, 23, 0, 1, "香蕉"),
		food("蘋果", 50, 0, 14, 0, 1, "蘋果"),
		food("無糖豆漿", 100, 10, 5, 4, 10, "黃豆", "水"),
		food("全麥麵包", 250, 8, 45, 4, 300, "全麥麵粉", "酵母"),

		// drinks
		food("珍珠奶茶", 650, 2, 80, 25, 20, "珍珠", "奶精", "糖漿", "紅茶"),
		food("拿鐵咖啡", 180, 8, 12, 9, 100, "濃縮咖啡", "牛奶"),
		food("可樂", 140, 0, 35, 0, 15, "碳酸水", "高果糖漿"),

		// other
		food("雞胸肉(100g)", 165, 31, 0, 3.6, 74, "雞胸肉"),
		food("燙青菜", 40, 2, 8, 0, 300, "地瓜葉", "醬油膏"),
		food("皮蛋瘦肉粥", 350, 18, 50, 8, 1100, "白米", "皮蛋", "瘦肉", "蔥"),
		food("臭豆腐", 500, 20, 35, 30, 800, "豆腐", "泡菜", "醬料"),
		food("蔥油餅", 400, 8, 50, 18, 600, "麵粉", "蔥", "油"),
		food("肉圓", 450, 8, 65, 15, 900, "地瓜粉", "豬肉", "筍乾"),
		food("鹹酥雞", 550, 30, 30, 35, 1000, "雞肉", "胡椒鹽", "九層塔"),
		food("鳳梨酥", 200, 2, 30, 8, 50, "麵粉", "鳳梨餡", "奶油"),
		food("味噌湯", 60, 4, 8, 2, 600, "味噌", "豆腐", "海帶芽"),

		builtinFallback(),
	}
}

func builtinFallback() nutri.ReferenceFood {
	return food(FallbackName, 0, 0, 0, 0, 0, "未知")
}

func builtinDrugs() []nutri.DrugRule {
	return []nutri.DrugRule{
		{
			Name: "Warfarin",
			// vitamin K
			FoodTags: map[string]nutri.RiskLevel{
				"高麗菜": nutri.RiskHigh,
				"菠菜":  nutri.RiskHigh,
				"花椰菜": nutri.RiskMedium,
				"地瓜葉": nutri.RiskHigh,
			},
			Drugs: map[string]nutri.RiskLevel{"Aspirin": nutri.RiskHigh},
		},
		{
			Name:     "Metformin",
			FoodTags: map[string]nutri.RiskLevel{"酒": nutri.RiskHigh},
			Drugs:    map[string]nutri.RiskLevel{},
		},
		{
			Name: "Grapefruit",
			Drugs: map[string]nutri.RiskLevel{
				"Statin":                  nutri.RiskHigh,
				"Calcium Channel Blocker": nutri.RiskHigh,
			},
		},
	}
}

func builtinProfiles() []nutri.Profile {
	return []nutri.Profile{
		{
			ID:                  "user_healthy",
			Name:                "王小明 (健康)",
			Age:                 25,
			HeightCM:            175,
			WeightKG:            70,
			Diseases:            []string{},
			DietaryRestrictions: []string{},
			TDEE:                2200,
		},
		{
			ID:                  "user_chronic",
			Name:                "李伯伯 (慢性病)",
			Age:                 65,
			HeightCM:            165,
			WeightKG:            80,
			Diseases:            []string{"diabetes", "hypertension"},
			DietaryRestrictions: []string{"low_sugar", "low_sodium"},
			TDEE:                1800,
		},
		{
			ID:                  "user_gym",
			Name:                "陳健人 (增肌)",
			Age:                 28,
			HeightCM:            180,
			WeightKG:            85,
			Diseases:            []string{},
			DietaryRestrictions: []string{"high_protein"},
			TDEE:                3000,
		},
	}
}

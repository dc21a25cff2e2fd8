package cmd

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/roadlab/stats19/internal/dataset"
	"github.com/roadlab/stats19/internal/features"
	"github.com/roadlab/stats19/internal/mlmodel"
	"github.com/roadlab/stats19/internal/models"
	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a severity classifier on a canonical dataset",
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		ratio, _ := cmd.Flags().GetFloat64("train-ratio")
		epochs, _ := cmd.Flags().GetInt("epochs")
		lr, _ := cmd.Flags().GetFloat64("learning-rate")
		lambda, _ := cmd.Flags().GetFloat64("l2-lambda")
		modelOut, _ := cmd.Flags().GetString("model-out")

		accidents, err := loadAccidents(input, false)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", input, err)
		}

		train, test, err := dataset.Split(accidents, ratio, seedFlag(), true)
		if err != nil {
			log.Fatalf("Split failed: %v", err)
		}

		trainMatrix := features.Build(train)
		scaler := features.FitScaler(trainMatrix)
		if err := scaler.Apply(trainMatrix); err != nil {
			log.Fatalf("Scaling failed: %v", err)
		}

		opts := mlmodel.TrainOptions{Epochs: epochs, LearningRate: lr, L2Lambda: lambda}
		model, err := mlmodel.Train(trainMatrix, scaler, opts)
		if err != nil {
			log.Fatalf("Training failed: %v", err)
		}

		testMatrix := features.Build(test)
		if err := scaler.Apply(testMatrix); err != nil {
			log.Fatalf("Scaling failed: %v", err)
		}
		predicted, err := model.PredictMatrix(testMatrix)
		if err != nil {
			log.Fatalf("Prediction failed: %v", err)
		}
		eval, err := mlmodel.Evaluate(testMatrix.Severity, predicted, model.Classes)
		if err != nil {
			log.Fatalf("Evaluation failed: %v", err)
		}

		printEvaluation(eval, model.Classes)

		if err := model.Save(modelOut); err != nil {
			log.Fatalf("Failed to save model: %v", err)
		}
		log.Printf("Trained on %d records, evaluated on %d, model saved to %s",
			len(train), len(test), modelOut)
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score a dataset with a trained severity model",
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		modelPath, _ := cmd.Flags().GetString("model")
		out, _ := cmd.Flags().GetString("out")

		model, err := mlmodel.Load(modelPath)
		if err != nil {
			log.Fatalf("Failed to load model: %v", err)
		}
		accidents, err := loadAccidents(input, false)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", input, err)
		}

		matrix := features.Build(accidents)
		if err := features.CheckLayout(matrix, model.FeatureNames); err != nil {
			log.Fatalf("Feature layout mismatch: %v", err)
		}
		if err := model.Scaler.Apply(matrix); err != nil {
			log.Fatalf("Scaling failed: %v", err)
		}
		predicted, err := model.PredictMatrix(matrix)
		if err != nil {
			log.Fatalf("Prediction failed: %v", err)
		}

		f, err := os.Create(out)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", out, err)
		}
		defer f.Close()

		w := csv.NewWriter(f)
		w.Write([]string{"accident_index", "actual_severity", "predicted_severity"})
		for i, a := range accidents {
			w.Write([]string{a.AccidentIndex, strconv.Itoa(a.Severity), strconv.Itoa(predicted[i])})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			log.Fatalf("Failed to write predictions: %v", err)
		}
		log.Printf("Scored %d records into %s", len(accidents), out)
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Attribute model predictions to features",
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		modelPath, _ := cmd.Flags().GetString("model")
		accidentIndex, _ := cmd.Flags().GetString("accident")
		class, _ := cmd.Flags().GetInt("class")
		topN, _ := cmd.Flags().GetInt("top")

		model, err := mlmodel.Load(modelPath)
		if err != nil {
			log.Fatalf("Failed to load model: %v", err)
		}
		accidents, err := loadAccidents(input, false)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", input, err)
		}

		matrix := features.Build(accidents)
		if err := features.CheckLayout(matrix, model.FeatureNames); err != nil {
			log.Fatalf("Feature layout mismatch: %v", err)
		}
		if err := model.Scaler.Apply(matrix); err != nil {
			log.Fatalf("Scaling failed: %v", err)
		}

		if accidentIndex == "" {
			// global view: mean |phi| over the dataset
			contributions, err := model.GlobalImportance(matrix.Rows, class)
			if err != nil {
				log.Fatalf("Attribution failed: %v", err)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "FEATURE\tmean |phi| (severity=%s)\n", models.SeverityLabel(class))
			for i, c := range contributions {
				if topN > 0 && i >= topN {
					break
				}
				fmt.Fprintf(w, "%s\t%.4f\n", c.Feature, c.Phi)
			}
			w.Flush()
			return
		}

		row := -1
		for i, a := range accidents {
			if a.AccidentIndex == accidentIndex {
				row = i
				break
			}
		}
		if row < 0 {
			log.Fatalf("Accident %s not found in %s", accidentIndex, input)
		}

		exp, err := model.Explain(matrix.Rows[row], class)
		if err != nil {
			log.Fatalf("Attribution failed: %v", err)
		}

		fmt.Printf("accident %s, severity=%s: p=%.3f (logit %.3f, baseline %.3f)\n\n",
			accidentIndex, models.SeverityLabel(class), exp.Probability, exp.Logit, exp.BaselineLogit)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FEATURE\tVALUE\tPHI")
		for i, c := range exp.Contributions {
			if topN > 0 && i >= topN {
				break
			}
			fmt.Fprintf(w, "%s\t%.3f\t%+.4f\n", c.Feature, c.Value, c.Phi)
		}
		w.Flush()
	},
}

func printEvaluation(eval *mlmodel.Evaluation, classes []int) {
	fmt.Printf("accuracy: %.3f\n\n", eval.Accuracy)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "actual \\ predicted")
	for _, c := range classes {
		fmt.Fprintf(w, "\t%s", models.SeverityLabel(c))
	}
	fmt.Fprintln(w)
	for _, a := range classes {
		fmt.Fprint(w, models.SeverityLabel(a))
		for _, p := range classes {
			fmt.Fprintf(w, "\t%d", eval.Confusion[a][p])
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	fmt.Println()

	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLASS\tPRECISION\tRECALL\tSUPPORT")
	for _, c := range classes {
		m := eval.PerClass[c]
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%d\n", models.SeverityLabel(c), m.Precision, m.Recall, m.Support)
	}
	w.Flush()
}

func init() {
	trainCmd.Flags().String("input", "", "Canonical dataset CSV")
	trainCmd.Flags().Float64("train-ratio", 0.8, "Fraction of records used for training")
	trainCmd.Flags().Int("epochs", 200, "Gradient descent epochs")
	trainCmd.Flags().Float64("learning-rate", 0.1, "Gradient descent learning rate")
	trainCmd.Flags().Float64("l2-lambda", 0.001, "L2 regularisation strength")
	trainCmd.Flags().String("model-out", "severity_model.json", "Model artifact output path")
	trainCmd.MarkFlagRequired("input")

	predictCmd.Flags().String("input", "", "Canonical dataset CSV")
	predictCmd.Flags().String("model", "severity_model.json", "Model artifact path")
	predictCmd.Flags().String("out", "predictions.csv", "Predictions output CSV")
	predictCmd.MarkFlagRequired("input")

	explainCmd.Flags().String("input", "", "Canonical dataset CSV")
	explainCmd.Flags().String("model", "severity_model.json", "Model artifact path")
	explainCmd.Flags().String("accident", "", "Accident index to explain (empty for global importance)")
	explainCmd.Flags().Int("class", models.SeverityFatal, "Severity class to attribute (1 fatal, 2 serious, 3 slight)")
	explainCmd.Flags().Int("top", 10, "Show only the top N features")
	explainCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(explainCmd)
}
